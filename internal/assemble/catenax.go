package assemble

import (
	"context"

	"sdfactory/internal/credential"
	"sdfactory/internal/document"
	pstrings "sdfactory/pkg/platform/strings"
)

// catenaxLegalPerson assembles the catena-x-ctx v2210 legal-person
// credential. The v2210 schema carries plain key names and typed
// registration numbers rather than gx-prefixed properties.
type catenaxLegalPerson struct {
	deps Deps
}

func (a *catenaxLegalPerson) Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	lp := doc.(document.LegalParticipant)

	regNumbers := make([]any, 0, len(lp.RegistrationNumbers))
	for _, rn := range lp.RegistrationNumbers {
		regNumbers = append(regNumbers, credential.NewSubject().
			Set("type", string(rn.Kind)).
			Set("value", rn.Value))
	}

	subject := credential.NewSubject().
		Set("type", "LegalPerson").
		Set("id", a.deps.Builder.HolderID(lp.Holder)).
		Set("bpn", lp.BPN).
		Set("registrationNumber", regNumbers).
		Set("headquarterAddress", credential.NewSubject().Set("countryCode", lp.HeadquarterCountry)).
		Set("legalAddress", credential.NewSubject().Set("countryCode", lp.LegalCountry))

	cred := a.deps.Builder.Issue(credential.KindLegalPerson, []string{a.deps.Contexts.Schema2210}, subject)
	return credential.Bundle{
		ExternalID:  lp.ExternalID,
		Credentials: []credential.Credential{cred},
	}, nil
}

// catenaxOffering assembles the catena-x-ctx v2210 service-offering
// credential.
type catenaxOffering struct {
	deps Deps
}

func (a *catenaxOffering) Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	so := doc.(document.ServiceOffering)

	subject := credential.NewSubject().
		Set("type", "ServiceOffering").
		Set("id", a.deps.Builder.HolderID(so.Holder)).
		Set("providedBy", so.ProvidedBy)

	subject.SetNonEmpty("aggregationOf", toAnySlice(pstrings.SplitNonEmpty(so.AggregationOf)))

	if urls := pstrings.SplitNonEmpty(so.TermsAndConditions); len(urls) > 0 {
		records, err := a.deps.Terms.ResolveAll(ctx, urls)
		if err != nil {
			return credential.Bundle{}, err
		}
		claims := make([]any, 0, len(records))
		for _, rec := range records {
			claims = append(claims, credential.NewSubject().
				Set("URL", rec.URL).
				Set("hash", rec.Hash))
		}
		subject.Set("termsAndConditions", claims)
	}

	subject.SetNonEmpty("policies", toAnySlice(pstrings.SplitNonEmpty(so.Policies)))

	subject.Set("dataAccountExport", []any{dataAccountExport("")})

	cred := a.deps.Builder.Issue(credential.KindServiceOffering, []string{a.deps.Contexts.Schema2210}, subject)
	return credential.Bundle{
		ExternalID:  so.ExternalID,
		Credentials: []credential.Credential{cred},
	}, nil
}
