// Package market supplies market multiple ranges per industry.
package market

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

// Source looks up multiple ranges for an industry. Industry is a TOL 2008
// section letter ("C"), a letter with division ("C25") or a numeric code ("25110").
type Source interface {
	Multipliers(ctx context.Context, industry string) (domain.Multipliers, error)
}

// Section maps an industry code to its TOL 2008 section letter, or "" when
// the code is not recognised.
func Section(industry string) string {
	s := strings.ToUpper(strings.TrimSpace(industry))
	if s == "" {
		return ""
	}
	if s[0] >= 'A' && s[0] <= 'U' {
		return s[:1]
	}
	if len(s) < 2 {
		return ""
	}
	div, err := strconv.Atoi(s[:2])
	if err != nil {
		return ""
	}
	for _, r := range divisions {
		if div >= r.from && div <= r.to {
			return r.section
		}
	}
	return ""
}

var divisions = []struct {
	from, to int
	section  string
}{
	{1, 3, "A"}, {5, 9, "B"}, {10, 33, "C"}, {35, 35, "D"}, {36, 39, "E"},
	{41, 43, "F"}, {45, 47, "G"}, {49, 53, "H"}, {55, 56, "I"}, {58, 63, "J"},
	{64, 66, "K"}, {68, 68, "L"}, {69, 75, "M"}, {77, 82, "N"}, {84, 84, "O"},
	{85, 85, "P"}, {86, 88, "Q"}, {90, 93, "R"}, {94, 96, "S"}, {97, 98, "T"}, {99, 99, "U"},
}

type row struct {
	revenue, ebit, ebitda [3]string
}

// staticRanges are indicative Finnish SME transaction multiples (min, avg, max).
var staticRanges = map[string]row{
	"C":       {revenue: [3]string{"0.4", "0.7", "1.0"}, ebit: [3]string{"4", "5.5", "7"}, ebitda: [3]string{"3.5", "4.5", "6"}},
	"F":       {revenue: [3]string{"0.2", "0.4", "0.6"}, ebit: [3]string{"3", "4", "5.5"}, ebitda: [3]string{"2.5", "3.5", "4.5"}},
	"G":       {revenue: [3]string{"0.2", "0.35", "0.6"}, ebit: [3]string{"3.5", "5", "6.5"}, ebitda: [3]string{"3", "4", "5.5"}},
	"H":       {revenue: [3]string{"0.3", "0.5", "0.8"}, ebit: [3]string{"3.5", "4.5", "6"}, ebitda: [3]string{"2.5", "3.5", "4.5"}},
	"I":       {revenue: [3]string{"0.2", "0.4", "0.7"}, ebit: [3]string{"3", "4", "5"}, ebitda: [3]string{"2.5", "3.5", "4.5"}},
	"J":       {revenue: [3]string{"0.8", "1.3", "2.0"}, ebit: [3]string{"5", "7", "9"}, ebitda: [3]string{"4.5", "6", "8"}},
	"M":       {revenue: [3]string{"0.5", "0.8", "1.2"}, ebit: [3]string{"4", "5.5", "7"}, ebitda: [3]string{"3.5", "5", "6.5"}},
	"N":       {revenue: [3]string{"0.3", "0.5", "0.8"}, ebit: [3]string{"3.5", "4.5", "6"}, ebitda: [3]string{"3", "4", "5"}},
	"Q":       {revenue: [3]string{"0.6", "0.9", "1.3"}, ebit: [3]string{"5", "6.5", "8"}, ebitda: [3]string{"4.5", "5.5", "7"}},
	"default": {revenue: [3]string{"0.3", "0.6", "0.9"}, ebit: [3]string{"3.5", "5", "6.5"}, ebitda: [3]string{"3", "4", "5.5"}},
}

// StaticSource serves the built-in ranges. Unknown industries get the
// general SME ranges.
type StaticSource struct{}

// Multipliers implements Source.
func (StaticSource) Multipliers(_ context.Context, industry string) (domain.Multipliers, error) {
	key := Section(industry)
	r, ok := staticRanges[key]
	if !ok {
		key = "default"
		r = staticRanges[key]
	}
	source := "static:" + key
	justification := "Suuntaa-antava pk-yrityskauppojen kerroinväli toimialalle " + key
	ebitda := rangeOf(domain.MethodEVEBITDA, r.ebitda, source, justification)
	return domain.Multipliers{
		Revenue:  rangeOf(domain.MethodRevenue, r.revenue, source, justification),
		EVEBIT:   rangeOf(domain.MethodEVEBIT, r.ebit, source, justification),
		EVEBITDA: &ebitda,
	}, nil
}

func rangeOf(m domain.Method, v [3]string, source, justification string) domain.MultiplierRange {
	return domain.MultiplierRange{
		Method:        m,
		Min:           decimal.RequireFromString(v[0]),
		Avg:           decimal.RequireFromString(v[1]),
		Max:           decimal.RequireFromString(v[2]),
		Justification: justification,
		Source:        source,
	}
}
