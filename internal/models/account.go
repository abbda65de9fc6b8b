package models

// Account codes for the three fixed ledger buckets. The rows themselves are
// provisioned at bootstrap and never change afterwards.
const (
	CodeAccountsReceivable = "AR"
	CodeCash               = "CASH"
	CodeRevenue            = "REV"
)

// Account is one of the fixed chart-of-accounts rows.
type Account struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
