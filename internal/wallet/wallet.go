// Package wallet looks up holder metadata in the custodian identity wallet.
// The pipeline only consumes the lookup result; wallet management itself is
// an external concern.
package wallet

import "context"

// Data is the holder metadata returned by the wallet.
type Data struct {
	DID  string `json:"did"`
	Name string `json:"name"`
}

// Lookup resolves a holder identifier to its decentralized identifier and
// display name.
type Lookup interface {
	WalletData(ctx context.Context, holder string) (Data, error)
}
