// Package assemble builds credential subjects and bundles from business
// documents. One assembler exists per (document variant, profile) pair:
// field names, nesting and cardinality rules differ per profile and are not
// derivable from each other.
package assemble

import (
	"context"
	"log/slog"

	"sdfactory/internal/credential"
	"sdfactory/internal/document"
	"sdfactory/internal/terms"
	"sdfactory/internal/wallet"
	dErrors "sdfactory/pkg/domain-errors"
)

// Profile identifies the active schema generation and trust-framework
// dialect. Selected once per deployment, never per request.
type Profile string

const (
	// ProfileTagus emits the Gaia-X Tagus multi-credential shape, dispatched
	// unsigned to the clearing house which countersigns.
	ProfileTagus Profile = "tagus"
	// ProfileGaiaX emits the gaia-x-ctx single-credential shape, signed
	// locally before upload.
	ProfileGaiaX Profile = "gaia-x"
	// ProfileCatenaX emits the catena-x 22.10 typed shape.
	ProfileCatenaX Profile = "catena-x"
	// ProfileFC emits the federated catalog's direct JSON-LD shape.
	ProfileFC Profile = "fc"
)

// Known reports whether p names a supported profile.
func (p Profile) Known() bool {
	switch p {
	case ProfileTagus, ProfileGaiaX, ProfileCatenaX, ProfileFC:
		return true
	}
	return false
}

// Signs reports whether bundles of this profile carry a local proof before
// dispatch. The other profiles delegate signing to their downstream.
func (p Profile) Signs() bool { return p == ProfileGaiaX }

// Contexts carries the schema URIs qualifying emitted credentials.
type Contexts struct {
	Participant string // Gaia-X participant schema
	Service     string // Gaia-X service-offering schema
	CatenaX     string // Catena-X namespace
	Schema2210  string // Catena-X 22.10 schema
}

// TermsResolver is the subset of the terms resolver assemblers need.
type TermsResolver interface {
	ResolveAll(ctx context.Context, urls []string) ([]terms.Record, error)
}

// Deps bundles the collaborators shared by all assemblers.
type Deps struct {
	Wallet   wallet.Lookup
	Terms    TermsResolver
	Builder  *credential.Builder
	Contexts Contexts
	Logger   *slog.Logger
}

// Assembler converts one document variant into a bundle under one profile.
type Assembler interface {
	Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error)
}

// Converter routes a classified document to the assembler its variant has
// under the active profile. The table is frozen at construction and safe
// for unsynchronized concurrent reads.
type Converter struct {
	profile    Profile
	assemblers map[document.Kind]Assembler
}

// New builds the converter for the active profile.
func New(profile Profile, deps Deps) (*Converter, error) {
	if !profile.Known() {
		return nil, dErrors.Newf(dErrors.CodeConfiguration, "unknown conversion profile %q", profile)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	assemblers := make(map[document.Kind]Assembler)
	switch profile {
	case ProfileTagus:
		assemblers[document.KindLegalParticipant] = &tagusParticipant{deps: deps}
		assemblers[document.KindServiceOffering] = &tagusOffering{deps: deps}
	case ProfileGaiaX:
		assemblers[document.KindLegalParticipant] = &gaiaxLegalPerson{deps: deps}
		assemblers[document.KindServiceOffering] = &gaiaxOffering{deps: deps}
	case ProfileCatenaX:
		assemblers[document.KindLegalParticipant] = &catenaxLegalPerson{deps: deps}
		assemblers[document.KindServiceOffering] = &catenaxOffering{deps: deps}
	case ProfileFC:
		// The federated catalog format only defines a legal-person shape.
		assemblers[document.KindLegalParticipant] = &fcLegalPerson{deps: deps}
	}

	return &Converter{profile: profile, assemblers: assemblers}, nil
}

// Profile returns the active profile.
func (c *Converter) Profile() Profile { return c.profile }

// Convert dispatches doc to its assembler. A variant the active profile
// does not define is a caller error, reported before any side effects.
func (c *Converter) Convert(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	asm, ok := c.assemblers[doc.DocumentKind()]
	if !ok {
		return credential.Bundle{}, dErrors.Newf(dErrors.CodeBadRequest,
			"profile %q does not support %s documents", c.profile, doc.DocumentKind())
	}
	return asm.Assemble(ctx, doc)
}
