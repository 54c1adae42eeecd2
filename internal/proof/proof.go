// Package proof signs credentials and verifies their signatures. Signing is
// profile-dependent: only profiles that upload self-signed descriptions
// carry a local signer.
package proof

import (
	"context"

	"sdfactory/internal/credential"
)

// ProofType is the proof suite stamped on every locally issued proof.
const ProofType = "JsonWebSignature2020"

// PurposeAssertion is the proof purpose for self-description assertions.
const PurposeAssertion = "assertionMethod"

// Signer attaches a proof to a credential. The returned credential is a
// signed copy; the input is never modified.
type Signer interface {
	Sign(ctx context.Context, cred credential.Credential) (credential.Credential, error)
}

// PredicateProvider yields a verification predicate for a verification
// method. The predicate reports whether a credential's proof is valid under
// that method's public key.
type PredicateProvider interface {
	PredicateFor(method string) (func(credential.Credential) bool, error)
}
