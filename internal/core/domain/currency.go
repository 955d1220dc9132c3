package domain

// Currency is a reference currency. Budgets are single-currency; the master
// list is managed here only as a lookup.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO 4217, e.g. "USD"
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	AuditFields
}
