package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/campusbooks/student-ledger/internal/models"
)

func entry(accountID int64, debit, credit string) models.LedgerEntry {
	return models.LedgerEntry{
		AccountID: accountID,
		Debit:     decimal.RequireFromString(debit),
		Credit:    decimal.RequireFromString(credit),
	}
}

func TestValidateEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.LedgerEntry
		wantErr string
	}{
		{
			name:    "balanced pair",
			entries: []models.LedgerEntry{entry(1, "100.00", "0"), entry(2, "0", "100.00")},
		},
		{
			name:    "both sides set",
			entries: []models.LedgerEntry{entry(1, "100.00", "100.00")},
			wantErr: "exactly one of debit or credit",
		},
		{
			name:    "neither side set",
			entries: []models.LedgerEntry{entry(1, "0", "0")},
			wantErr: "exactly one of debit or credit",
		},
		{
			name:    "unbalanced batch",
			entries: []models.LedgerEntry{entry(1, "100.00", "0"), entry(2, "0", "90.00")},
			wantErr: "unbalanced batch",
		},
		{
			name:    "sub-cent amount",
			entries: []models.LedgerEntry{entry(1, "0.005", "0"), entry(2, "0", "0.005")},
			wantErr: "more than 2 decimal places",
		},
		{
			name:    "missing account",
			entries: []models.LedgerEntry{entry(0, "50.00", "0"), entry(2, "0", "50.00")},
			wantErr: "missing account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEntries(tt.entries)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
