// Package dispatch delivers assembled bundles to exactly one downstream
// sink. The sink is selected once at startup; there is no fallback and no
// internal retry, failed deliveries surface to the caller.
package dispatch

import (
	"context"

	"sdfactory/internal/credential"
)

// Target names a configured sink.
type Target string

const (
	// TargetClearingHouse posts the whole bundle in one aggregate call.
	TargetClearingHouse Target = "clearing-house"
	// TargetCatalog posts each credential to the federated catalog endpoint
	// matching its kind.
	TargetCatalog Target = "catalog"
)

// Sink delivers one bundle downstream.
type Sink interface {
	Dispatch(ctx context.Context, bundle credential.Bundle) error
}
