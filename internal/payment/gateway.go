package payment

import "context"

// Intent is the gateway's handle for a pending payment. The client secret
// goes back to the browser, which completes collection directly with the
// gateway; no local ledger is kept.
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway defines the interface to the external payment provider.
type Gateway interface {
	// CreateIntent registers a payment of the given amount (major currency
	// units) for an existing gateway customer.
	CreateIntent(ctx context.Context, customerID string, amount float64, currency string) (*Intent, error)
}
