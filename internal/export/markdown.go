package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/valuatum/myyntikunto/internal/domain"
)

// Markdown renders the report as a Finnish markdown document.
func Markdown(v View) string {
	out := v.Output
	var b strings.Builder

	title := v.CompanyName
	if title == "" {
		title = "Arvonmääritys"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if v.BusinessID != "" {
		fmt.Fprintf(&b, "Y-tunnus %s", v.BusinessID)
		if !v.CreatedAt.IsZero() {
			fmt.Fprintf(&b, ", laadittu %s", v.CreatedAt.Format("2.1.2006"))
		}
		b.WriteString("\n\n")
	}

	b.WriteString("## Arvonmääritys\n\n")
	b.WriteString("| | Alaraja | Perusarvo | Yläraja |\n|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Oman pääoman arvo | %s € | %s € | %s € |\n\n",
		eur(out.ValuationRange.Low), eur(out.ValuationRange.Base), eur(out.ValuationRange.High))

	pw := out.ProbabilityWeighted
	fmt.Fprintf(&b, "Todennäköisyyspainotettu arvo (20/60/20): **%s €** (pessimistinen %s €, perus %s €, optimistinen %s €).\n\n",
		eur(pw.WeightedEquityValue), eur(pw.ScenarioValues.Pessimistic), eur(pw.ScenarioValues.Base), eur(pw.ScenarioValues.Optimistic))

	fmt.Fprintf(&b, "Substanssiarvo %s €", eur(out.Substance.Value))
	if out.Substance.IsNegative {
		b.WriteString(" (negatiivinen)")
	}
	fmt.Fprintf(&b, ". Luotettavuus %d/10, kassavirtamalli: %s.\n\n", out.Confidence, variantLabel(out.Variant))

	b.WriteString("## Menetelmät\n\n")
	b.WriteString("| Menetelmä | Perusta | Kerroin | Arvo alaraja | Arvo keski | Arvo yläraja |\n|---|---:|---|---:|---:|---:|\n")
	for _, m := range out.MethodResults {
		if !m.Available {
			fmt.Fprintf(&b, "| %s | %s | ei käytettävissä: %s | | | |\n", methodLabel(m.Method), amount(m.BaseValue), m.Reason)
			continue
		}
		multiplier := fmt.Sprintf("%s / %s / %s", m.MultiplierUsed.Low, m.MultiplierUsed.Mid, m.MultiplierUsed.High)
		if m.Method == domain.MethodDCF {
			multiplier = "skenaariot"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s € | %s € | %s € |\n", methodLabel(m.Method), amount(m.BaseValue), multiplier,
			eur(m.EquityValue.Low), eur(m.EquityValue.Mid), eur(m.EquityValue.High))
	}
	b.WriteString("\n")

	if len(out.Normalized.Applied) > 0 || len(out.Normalized.Ignored) > 0 {
		b.WriteString("## Normalisointi\n\n")
		for _, a := range out.Normalized.Applied {
			fmt.Fprintf(&b, "- %s: %s € → %s € (liikevoitto %s €)", categoryLabel(a.Category), eur(a.Original), eur(a.Normalized), signedEUR(a.Delta))
			if a.Explanation != "" {
				fmt.Fprintf(&b, ". %s", a.Explanation)
			}
			b.WriteString("\n")
		}
		for _, a := range out.Normalized.Ignored {
			fmt.Fprintf(&b, "- %s: ohitettu (%s)\n", categoryLabel(a.Category), a.Reason)
		}
		if len(out.Normalized.Applied) > 0 {
			fmt.Fprintf(&b, "\nLiikevoiton muutos yhteensä %s €.\n", signedEUR(out.Normalized.EBITDelta()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts markdown to HTML with GitHub-flavoured tables.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="fi">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: .3rem .6rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTMLPage renders a complete HTML page for the report.
func HTMLPage(v View) ([]byte, error) {
	body, err := RenderHTML(Markdown(v))
	if err != nil {
		return nil, err
	}
	title := v.CompanyName
	if title == "" {
		title = "Arvonmääritys"
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return buf.Bytes(), nil
}

func eur(d decimal.Decimal) string {
	return domain.FormatEUR(d)
}

func signedEUR(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + domain.FormatEUR(d)
	}
	return domain.FormatEUR(d)
}

func amount(a domain.Amount) string {
	if !a.Valid {
		return "–"
	}
	return domain.FormatEUR(a.Value) + " €"
}
