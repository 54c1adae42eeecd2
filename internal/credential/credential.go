// Package credential models Verifiable-Credential-shaped documents and the
// correlation-scoped bundles the factory dispatches downstream.
package credential

import (
	"bytes"
	"encoding/json"
	"time"
)

// Credential kinds, used to namespace generated ids and to route bundle
// entries on legacy sinks.
const (
	KindLegalParticipant   = "legal-participant"
	KindLegalPerson        = "legal-person"
	KindRegistrationNumber = "legal-registration-number"
	KindTermsAndConditions = "terms-and-conditions"
	KindServiceOffering    = "service-offering"
	KindAttachment         = "attachment"
)

// Proof is the cryptographic proof block attached by a signing backend.
type Proof struct {
	Type               string    `json:"type"`
	Created            time.Time `json:"created"`
	ProofPurpose       string    `json:"proofPurpose"`
	VerificationMethod string    `json:"verificationMethod"`
	JWS                string    `json:"jws"`
}

// MarshalJSON emits the created timestamp as whole-second RFC3339 UTC,
// matching the envelope's issuance and expiration dates.
func (p Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type               string `json:"type"`
		Created            string `json:"created"`
		ProofPurpose       string `json:"proofPurpose"`
		VerificationMethod string `json:"verificationMethod"`
		JWS                string `json:"jws"`
	}{p.Type, p.Created.UTC().Format(time.RFC3339), p.ProofPurpose, p.VerificationMethod, p.JWS})
}

// Credential is one dated, context-qualified verifiable credential. Values
// are never mutated in place: every transformation produces a new copy.
type Credential struct {
	Kind           string
	Contexts       []string
	ID             string
	Types          []string
	Issuer         string
	IssuanceDate   time.Time
	ExpirationDate time.Time
	Subject        *Subject
	Proof          *Proof

	// raw holds a caller-supplied credential passed through verbatim from an
	// attachment. When set it wins over the structured fields on marshal.
	raw map[string]any
}

// FromMap wraps a caller-supplied credential map for verbatim pass-through.
func FromMap(m map[string]any) Credential {
	return Credential{Kind: KindAttachment, raw: m}
}

// Raw returns the pass-through map, or nil for credentials built locally.
func (c Credential) Raw() map[string]any { return c.raw }

// SubjectType returns the subject's type discriminator, for both built and
// pass-through credentials.
func (c Credential) SubjectType() string {
	if c.raw != nil {
		if subj, ok := c.raw["credentialSubject"].(map[string]any); ok {
			if t, ok := subj["type"].(string); ok {
				return t
			}
		}
		return ""
	}
	if c.Subject == nil {
		return ""
	}
	return c.Subject.GetString("type")
}

// SubjectID returns the subject's identity reference.
func (c Credential) SubjectID() string {
	if c.raw != nil {
		if subj, ok := c.raw["credentialSubject"].(map[string]any); ok {
			if id, ok := subj["id"].(string); ok {
				return id
			}
		}
		return ""
	}
	if c.Subject == nil {
		return ""
	}
	return c.Subject.GetString("id")
}

// Clone returns an independent copy. The subject is cloned; the proof is
// copied by value.
func (c Credential) Clone() Credential {
	out := c
	if c.Subject != nil {
		out.Subject = c.Subject.Clone()
	}
	if c.Proof != nil {
		p := *c.Proof
		out.Proof = &p
	}
	out.Contexts = append([]string(nil), c.Contexts...)
	out.Types = append([]string(nil), c.Types...)
	return out
}

// WithProof returns a signed copy carrying the proof block. The receiver is
// left untouched.
func (c Credential) WithProof(p Proof) Credential {
	out := c.Clone()
	out.Proof = &p
	return out
}

// SigningInput returns the canonical byte form the proof is computed over:
// the JSON serialization with the proof omitted. Subject claims keep their
// insertion order, so the serialization is deterministic.
func (c Credential) SigningInput() ([]byte, error) {
	unsigned := c
	unsigned.Proof = nil
	if c.raw != nil {
		stripped := make(map[string]any, len(c.raw))
		for k, v := range c.raw {
			if k == "proof" {
				continue
			}
			stripped[k] = v
		}
		unsigned.raw = stripped
	}
	return json.Marshal(unsigned)
}

// MarshalJSON emits the W3C VC field layout in a fixed order. Pass-through
// credentials marshal their original map unchanged.
func (c Credential) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return json.Marshal(c.raw)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeField := func(name string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		nb, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(nb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(vb)
		return nil
	}

	if len(c.Contexts) > 0 {
		if err := writeField("@context", c.Contexts); err != nil {
			return nil, err
		}
	}
	if c.ID != "" {
		if err := writeField("id", c.ID); err != nil {
			return nil, err
		}
	}
	if len(c.Types) > 0 {
		if err := writeField("type", c.Types); err != nil {
			return nil, err
		}
	}
	if c.Issuer != "" {
		if err := writeField("issuer", c.Issuer); err != nil {
			return nil, err
		}
	}
	if err := writeField("issuanceDate", c.IssuanceDate.UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := writeField("expirationDate", c.ExpirationDate.UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if c.Subject != nil {
		if err := writeField("credentialSubject", c.Subject); err != nil {
			return nil, err
		}
	}
	if c.Proof != nil {
		if err := writeField("proof", c.Proof); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Bundle is the correlation-scoped unit delivered to a downstream sink.
// Credential order is significant and preserved end-to-end.
type Bundle struct {
	ExternalID  string
	Credentials []Credential
}
