// Package export renders valuation reports as XLSX workbooks, markdown and
// HTML, and appends them to a Google Sheets ledger.
package export

import (
	"time"

	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/engine"
	"github.com/valuatum/myyntikunto/internal/report"
)

// View is everything needed to render one report.
type View struct {
	CompanyName string
	BusinessID  string
	CreatedAt   time.Time
	Input       engine.Input
	Output      engine.Output
}

// NewView decodes a stored report.
func NewView(r *report.Report) (View, error) {
	in, out, err := report.Decode(r)
	if err != nil {
		return View{}, err
	}
	return View{
		CompanyName: r.CompanyName,
		BusinessID:  r.BusinessID,
		CreatedAt:   r.CreatedAt,
		Input:       in,
		Output:      out,
	}, nil
}

var methodLabels = map[domain.Method]string{
	domain.MethodRevenue:  "Liikevaihtokerroin",
	domain.MethodEVEBIT:   "EV/EBIT",
	domain.MethodEVEBITDA: "EV/EBITDA",
	domain.MethodDCF:      "Kassavirtamalli (DCF)",
}

var categoryLabels = map[domain.AdjustmentCategory]string{
	domain.CategoryOwnerSalary:   "Omistajan palkka",
	domain.CategoryPremisesCosts: "Toimitilakulut",
	domain.CategoryOther:         "Muut kulut",
}

var variantLabels = map[domain.Variant]string{
	domain.VariantFull:           "täysi",
	domain.VariantSimplified:     "yksinkertaistettu",
	domain.VariantForwardLooking: "ennakoiva",
}

func methodLabel(m domain.Method) string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return string(m)
}

func categoryLabel(c domain.AdjustmentCategory) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func variantLabel(v domain.Variant) string {
	if l, ok := variantLabels[v]; ok {
		return l
	}
	return string(v)
}
