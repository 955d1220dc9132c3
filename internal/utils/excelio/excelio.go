// Package excelio renders and parses the xlsx workbooks used for bulk budget
// amount exchange.
package excelio

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/procureflow/budget_control_app/internal/core/domain"
)

const (
	headerSheet  = "Budget Header"
	amountsSheet = "Budget Amounts"
	importSheet  = "Amounts"
)

// amountImportHeaders is the column layout of the import template. Only the
// first two columns are mandatory on upload.
var amountImportHeaders = []string{"Segment Code", "Original Budget", "Adjustment", "Notes"}

// ParseAmountRows reads budget amount rows from an xlsx upload. The first row
// is treated as the header and skipped; fully blank rows are ignored. Amount
// cells are returned unparsed so the caller can report malformed values per
// row.
func ParseAmountRows(r io.Reader) ([]domain.AmountImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	parsed := []domain.AmountImportRow{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		cells := make([]string, 4)
		for j := 0; j < len(cells) && j < len(row); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		if cells[0] == "" && cells[1] == "" && cells[2] == "" && cells[3] == "" {
			continue
		}
		parsed = append(parsed, domain.AmountImportRow{
			RowNumber:      i + 1,
			SegmentCode:    cells[0],
			OriginalBudget: cells[1],
			Adjustment:     cells[2],
			Notes:          cells[3],
		})
	}
	return parsed, nil
}

// BuildBudgetWorkbook renders a budget and its funded segments as a two-sheet
// workbook: a header sheet with the budget definition and an amounts sheet
// with one row per funded segment.
func BuildBudgetWorkbook(budget *domain.Budget, details []domain.AmountDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), headerSheet); err != nil {
		return nil, fmt.Errorf("failed to name header sheet: %w", err)
	}

	isActive := "No"
	if budget.IsActive {
		isActive = "Yes"
	}
	headerLabels := []interface{}{"Budget Code", "Budget Name", "Description", "Status", "Start Date", "End Date", "Currency", "Default Control Level", "Is Active"}
	headerValues := []interface{}{
		budget.BudgetCode,
		budget.BudgetName,
		budget.Description,
		string(budget.Status),
		budget.StartDate.Format("2006-01-02"),
		budget.EndDate.Format("2006-01-02"),
		budget.CurrencyCode,
		string(budget.DefaultControlLevel),
		isActive,
	}
	if err := f.SetSheetRow(headerSheet, "A1", &headerLabels); err != nil {
		return nil, fmt.Errorf("failed to write header labels: %w", err)
	}
	if err := f.SetSheetRow(headerSheet, "A2", &headerValues); err != nil {
		return nil, fmt.Errorf("failed to write header values: %w", err)
	}

	if _, err := f.NewSheet(amountsSheet); err != nil {
		return nil, fmt.Errorf("failed to create amounts sheet: %w", err)
	}
	amountHeaders := []interface{}{"Segment Code", "Segment Name", "Control Level", "Original Budget", "Committed", "Encumbered", "Actual", "Available"}
	if err := f.SetSheetRow(amountsSheet, "A1", &amountHeaders); err != nil {
		return nil, fmt.Errorf("failed to write amount headers: %w", err)
	}
	for i := range details {
		d := &details[i]
		row := []interface{}{
			d.SegmentValue.Code,
			d.SegmentValue.Alias,
			string(d.EffectiveControlLevel()),
			d.Amount.OriginalBudget.InexactFloat64(),
			d.Amount.CommittedAmount.InexactFloat64(),
			d.Amount.EncumberedAmount.InexactFloat64(),
			d.Amount.ActualAmount.InexactFloat64(),
			d.Amount.Available().InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address amounts row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(amountsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write amounts row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildImportTemplate renders an upload template pre-filled with the budget's
// enrolled segment codes. Budgets without segments get a single example row.
func BuildImportTemplate(budget *domain.Budget, segments []domain.BudgetSegmentDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), importSheet); err != nil {
		return nil, fmt.Errorf("failed to name template sheet: %w", err)
	}

	headers := make([]interface{}, len(amountImportHeaders))
	for i, h := range amountImportHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(importSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write template headers: %w", err)
	}

	if len(segments) == 0 {
		example := []interface{}{"5000", 10000, 0, "example row, replace with your segment codes"}
		if err := f.SetSheetRow(importSheet, "A2", &example); err != nil {
			return nil, fmt.Errorf("failed to write example row: %w", err)
		}
	}
	for i := range segments {
		row := []interface{}{segments[i].SegmentValue.Code, 0, 0, ""}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address template row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(importSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write template row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize template: %w", err)
	}
	return buf.Bytes(), nil
}
