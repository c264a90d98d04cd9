package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/couchcryptid/snf-facility-pages/internal/domain"
)

type object = map[string]any

// buildSchemas returns the JSON-LD blocks for a facility page: the facility
// itself, the web page, its breadcrumb trail, and an FAQ.
func buildSchemas(page domain.FacilityPage, siteURL string) ([]template.JS, error) {
	p := page.Provider
	url := facilityURL(siteURL, p.CCN)

	facility := object{
		"@context": "https://schema.org",
		"@type":    "NursingHome",
		"name":     p.Name,
		"url":      url,
		"@id":      url,
		"address": object{
			"@type":           "PostalAddress",
			"streetAddress":   p.Address,
			"addressLocality": p.City,
			"addressRegion":   p.State,
			"postalCode":      p.ZIP,
			"addressCountry":  "US",
		},
	}
	if p.Phone != "" {
		facility["telephone"] = p.Phone
	}
	if p.Beds != nil {
		facility["numberOfBeds"] = int(*p.Beds)
	}
	if pay := payments(p); len(pay) > 0 {
		facility["paymentAccepted"] = strings.Join(pay, ", ")
	}
	if p.OverallRating != nil {
		facility["aggregateRating"] = object{
			"@type":        "AggregateRating",
			"ratingValue":  fmt.Sprint(int(*p.OverallRating)),
			"bestRating":   "5",
			"worstRating":  "1",
			"ratingCount":  "3",
			"reviewAspect": "CMS Overall Rating",
		}
	}

	webpage := object{
		"@context":     "https://schema.org",
		"@type":        "MedicalWebPage",
		"name":         p.Name + " Facility Profile",
		"url":          url,
		"description":  fmt.Sprintf("Detailed quality ratings, staffing data, inspection history, and more for %s in %s.", p.Name, location(p)),
		"about":        object{"@id": url},
		"isPartOf":     object{"@type": "WebSite", "name": "SNF Compare", "url": siteURL},
		"lastReviewed": page.GeneratedAt.Format("2006-01-02"),
	}

	breadcrumb := object{
		"@context": "https://schema.org",
		"@type":    "BreadcrumbList",
		"itemListElement": []object{
			{"@type": "ListItem", "position": 1, "name": "Home", "item": siteURL},
			{"@type": "ListItem", "position": 2, "name": "Compare Tool", "item": siteURL + "/#tool"},
			{"@type": "ListItem", "position": 3, "name": p.Name, "item": url},
		},
	}

	var questions []object
	for _, f := range faqs(page) {
		questions = append(questions, object{
			"@type":          "Question",
			"name":           f[0],
			"acceptedAnswer": object{"@type": "Answer", "text": f[1]},
		})
	}
	faq := object{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": questions,
	}

	out := make([]template.JS, 0, 4)
	for _, s := range []object{facility, webpage, breadcrumb, faq} {
		// json.Marshal escapes <, > and & so the output is safe inside <script>.
		b, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		out = append(out, template.JS(b)) //nolint:gosec // marshalled JSON
	}
	return out, nil
}

func payments(p domain.Provider) []string {
	var out []string
	if p.AcceptsMedicare {
		out = append(out, "Medicare")
	}
	if p.AcceptsMedicaid {
		out = append(out, "Medicaid")
	}
	return out
}

func outOfFive(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d/5", int(*v))
}

// faqs returns question/answer pairs.
func faqs(page domain.FacilityPage) [][2]string {
	p := page.Provider
	name := p.Name

	overall := "not rated"
	if p.OverallRating != nil {
		overall = fmt.Sprintf("%d out of 5 stars", int(*p.OverallRating))
	}
	where := fmt.Sprintf("%s is located at %s, %s.", name, p.Address, location(p))
	if p.Phone != "" {
		where += " The phone number is " + p.Phone + "."
	}
	beds := fmt.Sprintf("%s has %s certified beds.", name, number(p.Beds, 0))
	if p.Ownership != "" {
		beds += " It is " + strings.ToLower(p.Ownership) + "."
	}

	out := [][2]string{
		{
			"What is the overall rating for " + name + "?",
			fmt.Sprintf("%s has an overall CMS rating of %s. This rating is based on health inspections (%s), quality measures (%s), and staffing (%s).",
				name, overall, outOfFive(p.HealthRating), outOfFive(p.QualityRating), outOfFive(p.StaffingRating)),
		},
		{"Where is " + name + " located?", where},
		{"How many beds does " + name + " have?", beds},
	}

	if page.Wages.Computable() {
		parts := make([]string, 0, len(domain.Roles))
		for _, role := range domain.Roles {
			parts = append(parts, fmt.Sprintf("%s: %s/hr", strings.ToUpper(string(role)), money(page.Wages.Rates[role])))
		}
		out = append(out, [2]string{
			"What are the estimated wages at " + name + "?",
			fmt.Sprintf("Estimated hourly wages at %s based on CMS cost report data: %s. These are modeled estimates, not actual posted wages.",
				name, strings.Join(parts, ", ")),
		})
	}

	if pay := payments(p); len(pay) > 0 {
		out = append(out, [2]string{
			"Does " + name + " accept Medicare or Medicaid?",
			fmt.Sprintf("Yes, %s accepts %s.", name, strings.Join(pay, " and ")),
		})
	}
	return out
}
