package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/campusbooks/student-ledger/internal/models"
)

var hundred = decimal.NewFromInt(100)

// validateEntries enforces the batch invariants before an append: every entry
// books a non-negative amount with at most 2 decimal places to exactly one
// side of one account, and the batch as a whole balances.
func validateEntries(entries []models.LedgerEntry) error {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, e := range entries {
		hasDebit := !e.Debit.IsZero()
		hasCredit := !e.Credit.IsZero()
		if hasDebit == hasCredit {
			return fmt.Errorf("entry %d: exactly one of debit or credit must be non-zero", i)
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return fmt.Errorf("entry %d: amounts must be non-negative", i)
		}
		if !exactCents(e.Debit) || !exactCents(e.Credit) {
			return fmt.Errorf("entry %d: amount has more than 2 decimal places", i)
		}
		if e.AccountID == 0 {
			return fmt.Errorf("entry %d: missing account", i)
		}

		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("unbalanced batch: debits %s != credits %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}

	return nil
}

func exactCents(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Floor())
}
