package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	SheetSummary       = "Yhteenveto"
	SheetMethods       = "Menetelmät"
	SheetNormalization = "Normalisointi"
)

// WriteXLSX writes the report as a workbook with summary, method and
// normalization sheets.
func WriteXLSX(w io.Writer, v View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("renaming default sheet: %w", err)
	}
	for _, name := range []string{SheetMethods, SheetNormalization} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	sheets := map[string][][]any{
		SheetSummary:       summaryRows(v),
		SheetMethods:       methodRows(v),
		SheetNormalization: normalizationRows(v),
	}
	for _, name := range []string{SheetSummary, SheetMethods, SheetNormalization} {
		if err := writeRows(f, name, sheets[name]); err != nil {
			return err
		}
		if err := f.SetColWidth(name, "A", "A", 32); err != nil {
			return fmt.Errorf("sizing %s: %w", name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing %s row %d: %w", sheet, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(v View) [][]any {
	out := v.Output
	pw := out.ProbabilityWeighted
	return [][]any{
		{"Yritys", v.CompanyName},
		{"Y-tunnus", v.BusinessID},
		{"Laadittu", v.CreatedAt.Format("2.1.2006")},
		{},
		{"Arvonmääritys (EUR)", "Alaraja", "Perusarvo", "Yläraja"},
		{"Oman pääoman arvo", toFloat(out.ValuationRange.Low), toFloat(out.ValuationRange.Base), toFloat(out.ValuationRange.High)},
		{},
		{"Skenaariot (EUR)", "Pessimistinen", "Perus", "Optimistinen"},
		{"Oman pääoman arvo", toFloat(pw.ScenarioValues.Pessimistic), toFloat(pw.ScenarioValues.Base), toFloat(pw.ScenarioValues.Optimistic)},
		{"Todennäköisyyspainotettu arvo", toFloat(pw.WeightedEquityValue.Round(0))},
		{},
		{"Substanssiarvo", toFloat(out.Substance.Value)},
		{"Nettovelka", toFloat(v.Input.NetDebt.Value)},
		{"Luotettavuus (0-10)", out.Confidence},
		{"Kassavirtamalli", variantLabel(out.Variant)},
	}
}

func methodRows(v View) [][]any {
	rows := [][]any{{
		"Menetelmä", "Käytettävissä", "Perusta", "Kerroin min", "Kerroin keski", "Kerroin max",
		"EV alaraja", "EV keski", "EV yläraja", "Arvo alaraja", "Arvo keski", "Arvo yläraja", "Huomautus",
	}}
	for _, m := range v.Output.MethodResults {
		available := "ei"
		if m.Available {
			available = "kyllä"
		}
		var base any
		if m.BaseValue.Valid {
			base = toFloat(m.BaseValue.Value)
		}
		rows = append(rows, []any{
			methodLabel(m.Method), available, base,
			toFloat(m.MultiplierUsed.Low), toFloat(m.MultiplierUsed.Mid), toFloat(m.MultiplierUsed.High),
			toFloat(m.EnterpriseValue.Low), toFloat(m.EnterpriseValue.Mid), toFloat(m.EnterpriseValue.High),
			toFloat(m.EquityValue.Low), toFloat(m.EquityValue.Mid), toFloat(m.EquityValue.High),
			m.Reason,
		})
	}
	return rows
}

func normalizationRows(v View) [][]any {
	rows := [][]any{{"Kategoria", "Rivi", "Alkuperäinen", "Normalisoitu", "Vaikutus liikevoittoon", "Selite"}}
	for _, a := range v.Output.Normalized.Applied {
		rows = append(rows, []any{
			categoryLabel(a.Category), a.Field, toFloat(a.Original), toFloat(a.Normalized), toFloat(a.Delta), a.Explanation,
		})
	}
	for _, a := range v.Output.Normalized.Ignored {
		rows = append(rows, []any{categoryLabel(a.Category), "", nil, nil, nil, "Ohitettu: " + a.Reason})
	}
	return rows
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
