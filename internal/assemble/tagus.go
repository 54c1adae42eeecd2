package assemble

import (
	"context"

	"sdfactory/internal/credential"
	"sdfactory/internal/document"
	"sdfactory/internal/regcode"
	pstrings "sdfactory/pkg/platform/strings"
)

// gxTermsAndConditionsType marks the shared terms-and-conditions credential
// every Tagus participant bundle carries.
const gxTermsAndConditionsType = "gx:GaiaXTermsAndConditions"

// gxTermsAndConditionsText is the fixed Gaia-X participant agreement bound
// into the terms-and-conditions credential.
const gxTermsAndConditionsText = `The PARTICIPANT signing the Self-Description agrees as follows:
- to update its descriptions about any changes, be it technical, organizational, or legal - especially but not limited to contractual in regards to the indicated attributes present in the descriptions.

The keypair used to sign Verifiable Credentials will be revoked where Gaia-X Association becomes aware of any inaccurate statements in regards to the claims which result in a non-compliance with the Trust Framework and policy rules defined in the Policy Rules and Labelling Document (PRLD).`

// tagusParticipant assembles the Tagus multi-credential participant bundle:
// the primary legal-participant credential, one registration-number
// credential per number when more than one is present, and the shared
// terms-and-conditions credential last.
type tagusParticipant struct {
	deps Deps
}

func (a *tagusParticipant) Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	lp := doc.(document.LegalParticipant)
	mapper := regcode.New("gx:")

	holder, err := a.deps.Wallet.WalletData(ctx, lp.Holder)
	if err != nil {
		return credential.Bundle{}, err
	}

	contexts := []string{a.deps.Contexts.Participant}
	builder := a.deps.Builder

	var regCreds []credential.Credential
	var regNumberClaim any
	if len(lp.RegistrationNumbers) == 1 {
		// Single registration number: inlined on the primary subject, no
		// standalone credential.
		inline, err := registrationClaims(mapper, lp.RegistrationNumbers[0], lp.LegalCountry)
		if err != nil {
			return credential.Bundle{}, err
		}
		regNumberClaim = inline
	} else {
		refs := make([]any, 0, len(lp.RegistrationNumbers))
		for _, rn := range lp.RegistrationNumbers {
			claims, err := registrationClaims(mapper, rn, lp.LegalCountry)
			if err != nil {
				return credential.Bundle{}, err
			}
			subject := credential.NewSubject().
				Set("type", "gx:legalRegistrationNumber").
				Set("id", holder.DID)
			for _, key := range claims.Keys() {
				v, _ := claims.Get(key)
				subject.Set(key, v)
			}
			cred := builder.Issue(credential.KindRegistrationNumber, contexts, subject)
			refs = append(refs, map[string]any{"id": cred.ID})
			regCreds = append(regCreds, cred)
		}
		regNumberClaim = refs
	}

	legalName := lp.Name
	if legalName == "" {
		legalName = holder.Name
	}

	primarySubject := credential.NewSubject().
		Set("@context", credential.NewSubject().Set("ctxsd", a.deps.Contexts.CatenaX)).
		Set("id", holder.DID).
		Set("type", "gx:LegalParticipant").
		Set("ctxsd:bpn", lp.BPN).
		Set("gx:legalName", legalName).
		Set("gx:legalRegistrationNumber", regNumberClaim).
		Set("gx:headquarterAddress", credential.NewSubject().Set("gx:countrySubdivisionCode", lp.HeadquarterCountry)).
		Set("gx:legalAddress", credential.NewSubject().Set("gx:countrySubdivisionCode", lp.LegalCountry))

	primary := builder.Issue(credential.KindLegalParticipant, contexts, primarySubject)

	bundle := credential.Bundle{ExternalID: lp.ExternalID}
	bundle.Credentials = append(bundle.Credentials, primary)
	bundle.Credentials = append(bundle.Credentials, regCreds...)
	bundle.Credentials = append(bundle.Credentials, a.termsAndConditions(lp, holder.DID, contexts)...)
	return bundle, nil
}

// termsAndConditions returns the attachment credentials, extending them
// with a fresh terms-and-conditions credential unless one for this holder
// is already attached. An attachment that already carries one is passed
// through completely unchanged.
func (a *tagusParticipant) termsAndConditions(lp document.LegalParticipant, holderID string, contexts []string) []credential.Credential {
	attachment := make([]credential.Credential, 0, len(lp.Attachment)+1)
	for _, m := range lp.Attachment {
		attachment = append(attachment, credential.FromMap(m))
	}
	for _, att := range attachment {
		if att.SubjectType() == gxTermsAndConditionsType && att.SubjectID() == holderID {
			return attachment
		}
	}

	subject := credential.NewSubject().
		Set("type", gxTermsAndConditionsType).
		Set("id", holderID).
		Set("gx:termsAndConditions", gxTermsAndConditionsText)
	return append(attachment, a.deps.Builder.Issue(credential.KindTermsAndConditions, contexts, subject))
}

// registrationClaims maps one registration number to its subject claims.
// A VAT id additionally carries the issuing country, taken from the legal
// address.
func registrationClaims(mapper regcode.Mapper, rn document.RegistrationNumber, legalCountry string) (*credential.Subject, error) {
	key, err := mapper.Resolve(rn.Kind)
	if err != nil {
		return nil, err
	}
	claims := credential.NewSubject().Set(key, rn.Value)
	if rn.Kind == document.RegKindVatID {
		claims.Set(key+"-countryCode", legalCountry)
	}
	return claims, nil
}

// tagusOffering assembles the Tagus service-offering credential.
type tagusOffering struct {
	deps Deps
}

func (a *tagusOffering) Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	so := doc.(document.ServiceOffering)

	holder, err := a.deps.Wallet.WalletData(ctx, so.Holder)
	if err != nil {
		return credential.Bundle{}, err
	}

	subject := credential.NewSubject().
		Set("@context", credential.NewSubject().Set("ctxsd", a.deps.Contexts.CatenaX)).
		Set("id", holder.DID).
		Set("type", "gx:ServiceOffering").
		Set("gx:providedBy", so.ProvidedBy).
		Set("gx:dataAccountExport", []any{dataAccountExport("gx:")})

	subject.SetNonEmpty("gx:aggregationOf", toAnySlice(pstrings.SplitNonEmpty(so.AggregationOf)))

	if urls := pstrings.SplitNonEmpty(so.TermsAndConditions); len(urls) > 0 {
		records, err := a.deps.Terms.ResolveAll(ctx, urls)
		if err != nil {
			return credential.Bundle{}, err
		}
		claims := make([]any, 0, len(records))
		for _, rec := range records {
			claims = append(claims, credential.NewSubject().
				Set("gx:URL", rec.URL).
				Set("gx:hash", rec.Hash))
		}
		subject.Set("gx:termsAndConditions", claims)
	}

	subject.SetNonEmpty("gx:policy", toAnySlice(pstrings.SplitNonEmpty(so.Policies)))

	cred := a.deps.Builder.Issue(credential.KindServiceOffering, []string{a.deps.Contexts.Service}, subject)
	return credential.Bundle{
		ExternalID:  so.ExternalID,
		Credentials: []credential.Credential{cred},
	}, nil
}

// dataAccountExport is the fixed export description every offering carries.
func dataAccountExport(prefix string) *credential.Subject {
	return credential.NewSubject().
		Set(prefix+"requestType", "email").
		Set(prefix+"accessType", "digital").
		Set(prefix+"formatType", "json")
}

func toAnySlice(values []string) []any {
	if len(values) == 0 {
		return nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
