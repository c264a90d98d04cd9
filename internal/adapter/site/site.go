// Package site renders facility pages, the facility index and the wage
// summary file into an output directory.
package site

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

// WagesFile is the name of the wage summary written next to the pages.
const WagesFile = "wages.json"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer writes static HTML and JSON into a single directory.
type Renderer struct {
	outDir  string
	siteURL string
	tmpl    *template.Template
	logger  *slog.Logger
}

// NewRenderer parses the page templates and creates outDir.
func NewRenderer(outDir, siteURL string, logger *slog.Logger) (*Renderer, error) {
	tmpl, err := template.New("site").Funcs(funcs).Funcs(template.FuncMap{"dict": dict}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Renderer{
		outDir:  outDir,
		siteURL: strings.TrimRight(siteURL, "/"),
		tmpl:    tmpl,
		logger:  logger,
	}, nil
}

// FacilityPath returns the output path of a facility page.
func (r *Renderer) FacilityPath(ccn string) string {
	return filepath.Join(r.outDir, ccn+".html")
}

// RenderFacility writes <outDir>/<ccn>.html.
func (r *Renderer) RenderFacility(ctx context.Context, page domain.FacilityPage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if page.Provider.CCN == "" || strings.ContainsAny(page.Provider.CCN, `/\`) {
		return fmt.Errorf("invalid CCN %q", page.Provider.CCN)
	}
	view, err := newFacilityView(page, r.siteURL)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "facility", view); err != nil {
		return fmt.Errorf("execute facility template: %w", err)
	}
	return writeFile(r.FacilityPath(page.Provider.CCN), buf.Bytes())
}

type indexEntry struct {
	CCN        string
	Name       string
	City       string
	RNWage     string
	SafetyTier string
}

type stateGroup struct {
	State      string
	Facilities []indexEntry
}

type indexView struct {
	SiteURL string
	Total   int
	States  []stateGroup
}

// RenderIndex writes <outDir>/index.html listing facilities by state, then
// by name.
func (r *Renderer) RenderIndex(ctx context.Context, summaries []domain.FacilitySummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := append([]domain.FacilitySummary(nil), summaries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].State != sorted[j].State {
			return sorted[i].State < sorted[j].State
		}
		return sorted[i].Name < sorted[j].Name
	})

	view := indexView{SiteURL: r.siteURL, Total: len(sorted)}
	for _, s := range sorted {
		state := s.State
		if state == "" {
			state = "Unknown"
		}
		if n := len(view.States); n == 0 || view.States[n-1].State != state {
			view.States = append(view.States, stateGroup{State: state})
		}
		entry := indexEntry{CCN: s.CCN, Name: s.Name, City: s.City, SafetyTier: s.SafetyTier.String()}
		if rn, ok := s.Wages[domain.RoleRN]; ok {
			entry.RNWage = "$" + rn.StringFixed(2)
		}
		g := &view.States[len(view.States)-1]
		g.Facilities = append(g.Facilities, entry)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "index", view); err != nil {
		return fmt.Errorf("execute index template: %w", err)
	}
	if err := writeFile(filepath.Join(r.outDir, "index.html"), buf.Bytes()); err != nil {
		return err
	}
	r.logger.Info("index written", "facilities", view.Total, "states", len(view.States))
	return nil
}

// WriteWages writes <outDir>/wages.json, one summary per facility.
func (r *Renderer) WriteWages(ctx context.Context, summaries []domain.FacilitySummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if summaries == nil {
		summaries = []domain.FacilitySummary{}
	}
	b, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("marshal wages: %w", err)
	}
	if err := writeFile(filepath.Join(r.outDir, WagesFile), b); err != nil {
		return err
	}
	r.logger.Info("wage summary written", "facilities", len(summaries), "path", filepath.Join(r.outDir, WagesFile))
	return nil
}

// ReadWages loads a wage summary file written by WriteWages.
func ReadWages(path string) ([]domain.FacilitySummary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []domain.FacilitySummary
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
