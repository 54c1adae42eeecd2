package document

import (
	"encoding/json"

	dErrors "sdfactory/pkg/domain-errors"
)

// requestEnvelope is the superset of wire fields across all variants.
// The legacy schema spelled address countries with a dotted key, so both
// spellings are accepted.
type requestEnvelope struct {
	ExternalID string `json:"externalId"`
	Type       string `json:"type"`
	Holder     string `json:"holder"`
	Issuer     string `json:"issuer"`

	BPN                string               `json:"bpn"`
	Name               string               `json:"name"`
	RegistrationNumber []registrationNumber `json:"registrationNumber"`
	HeadquarterCountry string               `json:"headquarterAddressCountry"`
	HeadquarterLegacy  string               `json:"headquarterAddress.country"`
	LegalCountry       string               `json:"legalAddressCountry"`
	LegalLegacy        string               `json:"legalAddress.country"`
	Attachment         []map[string]any     `json:"attachment"`

	ProvidedBy         string `json:"providedBy"`
	AggregationOf      string `json:"aggregationOf"`
	TermsAndConditions string `json:"termsAndConditions"`
	Policies           string `json:"policies"`
}

type registrationNumber struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ParseRequest classifies a raw request payload into a Document. Unknown
// discriminators are rejected; classification never contacts collaborators.
func ParseRequest(raw []byte) (Document, error) {
	var env requestEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed request payload")
	}

	base := Base{
		ExternalID: env.ExternalID,
		Type:       env.Type,
		Holder:     env.Holder,
		Issuer:     env.Issuer,
	}

	switch env.Type {
	case "LegalParticipant", "LegalPerson":
		doc := LegalParticipant{
			Base:               base,
			BPN:                env.BPN,
			Name:               env.Name,
			HeadquarterCountry: firstNonEmpty(env.HeadquarterCountry, env.HeadquarterLegacy),
			LegalCountry:       firstNonEmpty(env.LegalCountry, env.LegalLegacy),
			Attachment:         env.Attachment,
		}
		if doc.BPN == "" {
			doc.BPN = env.Holder
		}
		for _, rn := range env.RegistrationNumber {
			doc.RegistrationNumbers = append(doc.RegistrationNumbers, RegistrationNumber{
				Kind:  RegistrationNumberKind(rn.Type),
				Value: rn.Value,
			})
		}
		if err := Validate(doc); err != nil {
			return nil, err
		}
		return doc, nil

	case "ServiceOffering":
		doc := ServiceOffering{
			Base:               base,
			ProvidedBy:         env.ProvidedBy,
			AggregationOf:      env.AggregationOf,
			TermsAndConditions: env.TermsAndConditions,
			Policies:           env.Policies,
		}
		if err := Validate(doc); err != nil {
			return nil, err
		}
		return doc, nil

	case "":
		return nil, dErrors.New(dErrors.CodeBadRequest, "type discriminator is required")
	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "not supported SD-Document type %q", env.Type)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
