// Package document models the inbound business documents the factory
// converts into self-description bundles.
package document

import (
	dErrors "sdfactory/pkg/domain-errors"
)

// Kind discriminates the supported document variants.
type Kind string

const (
	KindLegalParticipant Kind = "LegalParticipant"
	KindServiceOffering  Kind = "ServiceOffering"
)

// RegistrationNumberKind enumerates the supported registration-number types.
type RegistrationNumberKind string

const (
	RegKindTaxID   RegistrationNumberKind = "taxID"
	RegKindVatID   RegistrationNumberKind = "vatID"
	RegKindEUID    RegistrationNumberKind = "EUID"
	RegKindEORI    RegistrationNumberKind = "EORI"
	RegKindLEICode RegistrationNumberKind = "leiCode"
)

// KnownRegistrationNumberKinds is the closed set accepted on the wire.
var KnownRegistrationNumberKinds = map[RegistrationNumberKind]struct{}{
	RegKindTaxID:   {},
	RegKindVatID:   {},
	RegKindEUID:    {},
	RegKindEORI:    {},
	RegKindLEICode: {},
}

// RegistrationNumber is one identifier of a legal entity.
type RegistrationNumber struct {
	Kind  RegistrationNumberKind
	Value string
}

// Base carries the fields every document variant shares. ExternalID is a
// caller-supplied correlation token; the factory never enforces uniqueness.
type Base struct {
	ExternalID string
	Type       string // wire discriminator as received, kept for subject claims
	Holder     string
	Issuer     string
}

// Document is the tagged union over supported business-document variants.
// The set is sealed; classification happens once in ParseRequest.
type Document interface {
	Meta() Base
	DocumentKind() Kind
}

// LegalParticipant describes a legal entity requesting a participant
// self-description. The legacy "LegalPerson" discriminator maps here too.
type LegalParticipant struct {
	Base
	BPN                 string
	Name                string
	RegistrationNumbers []RegistrationNumber
	HeadquarterCountry  string
	LegalCountry        string

	// Attachment optionally carries pre-existing credentials supplied by the
	// caller; assemblers pass it through unchanged when it already contains a
	// terms-and-conditions credential for this holder.
	Attachment []map[string]any
}

func (d LegalParticipant) Meta() Base         { return d.Base }
func (d LegalParticipant) DocumentKind() Kind { return KindLegalParticipant }

// ServiceOffering describes a service offered by a participant. The
// multi-valued fields stay raw comma-separated strings; assemblers parse
// them so absence and emptiness stay distinguishable.
type ServiceOffering struct {
	Base
	ProvidedBy         string
	AggregationOf      string
	TermsAndConditions string
	Policies           string
}

func (d ServiceOffering) Meta() Base         { return d.Base }
func (d ServiceOffering) DocumentKind() Kind { return KindServiceOffering }

// Validate checks structural completeness. It must pass before any
// collaborator (wallet, terms host, signer, sink) is contacted.
func Validate(doc Document) error {
	meta := doc.Meta()
	if meta.ExternalID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "externalId is required")
	}
	if meta.Holder == "" {
		return dErrors.New(dErrors.CodeBadRequest, "holder is required")
	}

	switch d := doc.(type) {
	case LegalParticipant:
		if len(d.RegistrationNumbers) == 0 {
			return dErrors.New(dErrors.CodeBadRequest, "at least one registration number is required")
		}
		for _, rn := range d.RegistrationNumbers {
			if _, ok := KnownRegistrationNumberKinds[rn.Kind]; !ok {
				return dErrors.Newf(dErrors.CodeBadRequest, "unsupported registration number type %q", rn.Kind)
			}
			if rn.Value == "" {
				return dErrors.New(dErrors.CodeBadRequest, "registration number value is required")
			}
		}
		if d.HeadquarterCountry == "" || d.LegalCountry == "" {
			return dErrors.New(dErrors.CodeBadRequest, "headquarter and legal address countries are required")
		}
	case ServiceOffering:
		if d.ProvidedBy == "" {
			return dErrors.New(dErrors.CodeBadRequest, "providedBy is required")
		}
	default:
		return dErrors.New(dErrors.CodeBadRequest, "not supported SD-Document type")
	}
	return nil
}
