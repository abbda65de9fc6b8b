package accounts

import (
	"context"
	"fmt"

	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
)

// ConfigurationError means a required account code is missing at startup.
// The service must not accept posting calls when this is returned.
type ConfigurationError struct {
	Code string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("required account %q is not provisioned: %v", e.Code, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Registry resolves the three fixed account codes to durable ids. Resolution
// happens once, at construction, so a misconfigured deployment fails before
// its first posting. The registry is read-only afterwards and safe for
// concurrent use.
type Registry struct {
	ar   int64
	cash int64
	rev  int64
}

// NewRegistry resolves AR, CASH and REV eagerly and fails with a
// ConfigurationError naming the first missing code.
func NewRegistry(ctx context.Context, store interfaces.LedgerStore) (*Registry, error) {
	r := &Registry{}

	for _, bind := range []struct {
		code string
		dst  *int64
	}{
		{models.CodeAccountsReceivable, &r.ar},
		{models.CodeCash, &r.cash},
		{models.CodeRevenue, &r.rev},
	} {
		id, err := store.AccountIDByCode(ctx, bind.code)
		if err != nil {
			return nil, &ConfigurationError{Code: bind.code, Err: err}
		}
		*bind.dst = id
	}

	return r, nil
}

// AR returns the Accounts-Receivable account id.
func (r *Registry) AR() int64 { return r.ar }

// Cash returns the Cash account id.
func (r *Registry) Cash() int64 { return r.cash }

// Revenue returns the Revenue account id.
func (r *Registry) Revenue() int64 { return r.rev }
