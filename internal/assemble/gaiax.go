package assemble

import (
	"context"

	"sdfactory/internal/credential"
	"sdfactory/internal/document"
	"sdfactory/internal/regcode"
	pstrings "sdfactory/pkg/platform/strings"
)

// gaiaxLegalPerson assembles the gaia-x-ctx legal-person credential. Unlike
// Tagus, registration numbers are always emitted as a uniform ordered list,
// regardless of how many are present.
type gaiaxLegalPerson struct {
	deps Deps
}

func (a *gaiaxLegalPerson) Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	lp := doc.(document.LegalParticipant)
	mapper := regcode.New("gx:")

	holder, err := a.deps.Wallet.WalletData(ctx, lp.Holder)
	if err != nil {
		return credential.Bundle{}, err
	}

	regNumbers := make([]any, 0, len(lp.RegistrationNumbers))
	for _, rn := range lp.RegistrationNumbers {
		key, err := mapper.Resolve(rn.Kind)
		if err != nil {
			return credential.Bundle{}, err
		}
		regNumbers = append(regNumbers, credential.NewSubject().Set(key, rn.Value))
	}

	name := lp.Name
	if name == "" {
		name = holder.Name
	}

	subject := credential.NewSubject().
		Set("@context", credential.NewSubject().Set("ctxsd", a.deps.Contexts.CatenaX)).
		Set("id", holder.DID).
		Set("type", "gx:LegalPerson").
		Set("ctxsd:bpn", lp.BPN).
		Set("gx:name", name).
		Set("gx:legalRegistrationNumber", regNumbers).
		Set("gx:headquarterAddress", credential.NewSubject().Set("gx:addressCountryCode", lp.HeadquarterCountry)).
		Set("gx:legalAddress", credential.NewSubject().Set("gx:addressCountryCode", lp.LegalCountry))

	cred := a.deps.Builder.Issue(credential.KindLegalPerson, []string{a.deps.Contexts.Participant}, subject)
	return credential.Bundle{
		ExternalID:  lp.ExternalID,
		Credentials: []credential.Credential{cred},
	}, nil
}

// gaiaxOffering assembles the gaia-x-ctx service-offering credential with
// the gx-service namespace.
type gaiaxOffering struct {
	deps Deps
}

func (a *gaiaxOffering) Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	so := doc.(document.ServiceOffering)

	holder, err := a.deps.Wallet.WalletData(ctx, so.Holder)
	if err != nil {
		return credential.Bundle{}, err
	}

	subject := credential.NewSubject().
		Set("@context", credential.NewSubject().Set("ctxsd", a.deps.Contexts.CatenaX)).
		Set("id", holder.DID).
		Set("type", "gx:ServiceOffering").
		Set("ctxsd:connector-url", "https://connector-placeholder.net").
		Set("gx-service:providedBy", so.ProvidedBy).
		Set("gx-service:dataAccountExport", []any{dataAccountExport("gx-service:")})

	subject.SetNonEmpty("gx-service:aggregationOf", toAnySlice(pstrings.SplitNonEmpty(so.AggregationOf)))

	if urls := pstrings.SplitNonEmpty(so.TermsAndConditions); len(urls) > 0 {
		records, err := a.deps.Terms.ResolveAll(ctx, urls)
		if err != nil {
			return credential.Bundle{}, err
		}
		claims := make([]any, 0, len(records))
		for _, rec := range records {
			claims = append(claims, credential.NewSubject().
				Set("gx-service:URL", rec.URL).
				Set("gx-service:hash", rec.Hash))
		}
		subject.Set("gx-service:termsAndConditions", claims)
	}

	subject.SetNonEmpty("gx-service:policy", toAnySlice(pstrings.SplitNonEmpty(so.Policies)))

	cred := a.deps.Builder.Issue(credential.KindServiceOffering, []string{a.deps.Contexts.Service}, subject)
	return credential.Bundle{
		ExternalID:  so.ExternalID,
		Credentials: []credential.Credential{cred},
	}, nil
}
