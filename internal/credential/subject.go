package credential

import (
	"bytes"
	"encoding/json"

	dErrors "sdfactory/pkg/domain-errors"
)

// Subject is the ordered claim map of a credential. Key order is part of the
// wire contract for several downstream consumers, so insertion order is
// preserved through marshaling. A Subject attached to a Credential must not
// be mutated afterwards; build a Clone instead.
type Subject struct {
	keys   []string
	values map[string]any
}

// NewSubject returns an empty ordered claim map.
func NewSubject() *Subject {
	return &Subject{values: make(map[string]any)}
}

// Set inserts or replaces a claim. A replaced key keeps its original position.
func (s *Subject) Set(key string, value any) *Subject {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return s
}

// SetNonEmpty sets the claim only when the list has entries. An absent field
// is omitted from the subject entirely, never emitted as an empty list.
func (s *Subject) SetNonEmpty(key string, values []any) *Subject {
	if len(values) == 0 {
		return s
	}
	return s.Set(key, values)
}

// Get returns the claim value for key.
func (s *Subject) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the claim value when it is a string.
func (s *Subject) GetString(key string) string {
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return ""
}

// Keys returns the claim keys in insertion order.
func (s *Subject) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of claims.
func (s *Subject) Len() int { return len(s.keys) }

// Clone returns an independent copy. Claim values are copied by reference;
// they are treated as immutable once set.
func (s *Subject) Clone() *Subject {
	c := &Subject{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]any, len(s.values)),
	}
	copy(c.keys, s.keys)
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON emits the claims as a JSON object in insertion order.
func (s *Subject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds the subject preserving wire key order. Nested
// objects decode to plain maps; only the top level keeps ordering.
func (s *Subject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return dErrors.New(dErrors.CodeBadRequest, "credential subject must be a JSON object")
	}

	s.keys = nil
	s.values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return dErrors.New(dErrors.CodeBadRequest, "invalid credential subject key")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		s.Set(key, value)
	}
	_, err = dec.Token() // closing brace
	return err
}
