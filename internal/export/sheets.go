package export

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/valuatum/myyntikunto/internal/engine"
	"github.com/valuatum/myyntikunto/internal/report"
)

// LedgerSheet is the sheet that collects one row per stored report.
const LedgerSheet = "RAPORTIT"

var ledgerHeader = []any{
	"Laadittu", "Raportti", "Y-tunnus", "Yritys",
	"Alaraja", "Perusarvo", "Yläraja", "Painotettu arvo",
	"Substanssi", "Luotettavuus", "Malli",
}

// SheetsWriter appends stored reports to a Google Sheets ledger.
// Implements report.AfterSaveHook.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// AfterSave writes the header when the ledger is empty, then appends one row.
func (w *SheetsWriter) AfterSave(ctx context.Context, r *report.Report, out engine.Output) error {
	if err := w.ensureSheets(ctx, LedgerSheet); err != nil {
		return err
	}

	existing, err := w.svc.Spreadsheets.Values.Get(
		w.spreadsheetID, LedgerSheet+"!A1:A1",
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", LedgerSheet, err)
	}
	if len(existing.Values) == 0 {
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			LedgerSheet+"!A1",
			&sheets.ValueRange{Values: [][]any{ledgerHeader}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing %s header: %w", LedgerSheet, err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		LedgerSheet+"!A:K",
		&sheets.ValueRange{Values: [][]any{ledgerRow(r, out)}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %s row: %w", LedgerSheet, err)
	}
	return nil
}

// ledgerRow builds the ledger columns in ledgerHeader order.
func ledgerRow(r *report.Report, out engine.Output) []any {
	return []any{
		r.CreatedAt.UTC().Format("2006-01-02 15:04"),
		r.ID.String(),
		r.BusinessID,
		r.CompanyName,
		toFloat(out.ValuationRange.Low),
		toFloat(out.ValuationRange.Base),
		toFloat(out.ValuationRange.High),
		toFloat(out.ProbabilityWeighted.WeightedEquityValue.Round(0)),
		toFloat(out.Substance.Value),
		out.Confidence,
		string(out.Variant),
	}
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}
