// Package compare refreshes the data embedded in the facility comparison
// tool page.
//
// The page carries its dataset as a JavaScript literal, one array per
// facility:
//
//	const _raw = [[id,ccn,name,...,wageNP,wageRN,wageLPN,wageCNA,npHrs,address,phone],...];
package compare

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

// ErrDatasetNotFound means the page has no `const _raw = [[...]];` literal.
var ErrDatasetNotFound = errors.New("compare: _raw dataset not found")

// Row column positions.
const (
	colCCN     = 1
	colWageNP  = 23
	colNPHours = 27
	colAddress = 28
	colPhone   = 29
	rowWidth   = 30
)

var (
	rawPattern = regexp.MustCompile(`(?s)const _raw = (\[\[.*?\]\]);`)

	wageColumns = map[domain.Role]int{
		domain.RoleNP:  colWageNP,
		domain.RoleRN:  colWageNP + 1,
		domain.RoleLPN: colWageNP + 2,
		domain.RoleCNA: colWageNP + 3,
	}
)

const (
	oldColumnTail = "wageCNA,npHrs]"
	newColumnTail = "wageCNA,npHrs,address,phone]"
)

// Contact is the address and phone shown for a facility.
type Contact struct {
	Address string
	Phone   string
}

// Result counts what a patch changed.
type Result struct {
	Rows         int
	WagesUpdated int
	WagesCleared int
	Unmatched    int
}

// Patch rewrites the embedded dataset. Facilities present in summaries get
// their wage columns replaced, or nulled when no estimate exists; facilities
// absent from summaries keep their existing wages. Address and phone are set
// from contacts for every row.
func Patch(doc []byte, summaries []domain.FacilitySummary, contacts map[string]Contact) ([]byte, Result, error) {
	var res Result
	loc := rawPattern.FindSubmatchIndex(doc)
	if loc == nil {
		return nil, res, ErrDatasetNotFound
	}
	literal := doc[loc[2]:loc[3]]

	dec := json.NewDecoder(bytes.NewReader(literal))
	dec.UseNumber()
	var rows [][]any
	if err := dec.Decode(&rows); err != nil {
		return nil, res, fmt.Errorf("decode _raw: %w", err)
	}

	byCCN := make(map[string]domain.FacilitySummary, len(summaries))
	for _, s := range summaries {
		byCCN[s.CCN] = s
	}

	for i, row := range rows {
		row = pad(row, colNPHours+1)
		ccn := cellString(row, colCCN)

		if s, ok := byCCN[ccn]; ok {
			if len(s.Wages) > 0 {
				for role, col := range wageColumns {
					if d, ok := s.Wages[role]; ok {
						row[col] = json.Number(d.StringFixed(2))
					} else {
						row[col] = nil
					}
				}
				res.WagesUpdated++
			} else {
				for _, col := range wageColumns {
					row[col] = nil
				}
				res.WagesCleared++
			}
		} else {
			res.Unmatched++
		}

		c := contacts[ccn]
		row = pad(row, rowWidth)
		row[colAddress] = c.Address
		row[colPhone] = c.Phone
		rows[i] = row
	}
	res.Rows = len(rows)

	encoded, err := json.Marshal(rows)
	if err != nil {
		return nil, res, fmt.Errorf("encode _raw: %w", err)
	}

	var out bytes.Buffer
	out.Grow(len(doc) + len(encoded) - len(literal))
	out.Write(doc[:loc[2]])
	out.Write(encoded)
	out.Write(doc[loc[3]:])

	patched := out.Bytes()
	if !bytes.Contains(patched, []byte(newColumnTail)) {
		patched = bytes.Replace(patched, []byte(oldColumnTail), []byte(newColumnTail), 1)
	}
	return patched, res, nil
}

// PatchFile applies Patch to the file at path in place.
func PatchFile(path string, summaries []domain.FacilitySummary, contacts map[string]Contact) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	patched, res, err := Patch(doc, summaries, contacts)
	if err != nil {
		return res, err
	}
	if err := os.WriteFile(path, patched, info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("write %s: %w", path, err)
	}
	return res, nil
}

func pad(row []any, n int) []any {
	for len(row) < n {
		row = append(row, nil)
	}
	return row
}

func cellString(row []any, i int) string {
	switch v := row[i].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
