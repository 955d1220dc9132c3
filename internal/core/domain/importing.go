package domain

import "github.com/shopspring/decimal"

// AmountImportRow is one raw row from a bulk amount upload. Amount cells stay
// strings until the loader parses them, so a malformed cell is a per-row error
// rather than a failed file parse.
type AmountImportRow struct {
	RowNumber      int    `json:"rowNumber"` // 1-based row in the source file
	SegmentCode    string `json:"segmentCode"`
	OriginalBudget string `json:"originalBudget"`
	Adjustment     string `json:"adjustment"`
	Notes          string `json:"notes"`
}

// ImportResult is the row-partial outcome of a bulk amount import.
type ImportResult struct {
	TotalRows     int             `json:"totalRows"`
	SuccessCount  int             `json:"successCount"`
	ImportedCount int             `json:"importedCount"`
	ErrorCount    int             `json:"errorCount"`
	Errors        []string        `json:"errors"`
	TotalBudget   decimal.Decimal `json:"totalBudget"` // sum of original+adjustment over imported rows
}
