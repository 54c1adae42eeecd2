package assemble

import (
	"context"

	dErrors "sdfactory/pkg/domain-errors"

	"sdfactory/internal/credential"
	"sdfactory/internal/document"
)

// fcLegalPerson assembles the federated-catalog direct legal-person
// credential. The catalog schema admits exactly one registration number;
// any other cardinality is rejected rather than truncated.
type fcLegalPerson struct {
	deps Deps
}

func (a *fcLegalPerson) Assemble(ctx context.Context, doc document.Document) (credential.Bundle, error) {
	lp := doc.(document.LegalParticipant)

	if len(lp.RegistrationNumbers) != 1 {
		return credential.Bundle{}, dErrors.Newf(dErrors.CodeBadRequest,
			"fc profile requires exactly one registration number, got %d", len(lp.RegistrationNumbers))
	}
	rn := lp.RegistrationNumbers[0]

	holder, err := a.deps.Wallet.WalletData(ctx, lp.Holder)
	if err != nil {
		return credential.Bundle{}, err
	}

	name := lp.Name
	if name == "" {
		name = holder.Name
	}

	subject := credential.NewSubject().
		Set("@context", credential.NewSubject().
			Set("gx", a.deps.Contexts.Participant).
			Set("vcard", "http://www.w3.org/2006/vcard/ns#")).
		Set("@id", holder.DID).
		Set("@type", "gx:LegalPerson").
		Set("gx:name", name).
		Set("gx:registrationNumber", rn.Value).
		Set("gx:headquarterAddress", credential.NewSubject().Set("vcard:country-name", lp.HeadquarterCountry)).
		Set("gx:legalAddress", credential.NewSubject().Set("vcard:country-name", lp.LegalCountry))

	cred := a.deps.Builder.Issue(credential.KindLegalPerson, []string{a.deps.Contexts.Participant}, subject)
	return credential.Bundle{
		ExternalID:  lp.ExternalID,
		Credentials: []credential.Credential{cred},
	}, nil
}
