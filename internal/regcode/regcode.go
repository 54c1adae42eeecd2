// Package regcode maps registration-number kinds to the namespaced property
// keys a conversion profile expects.
package regcode

import (
	"errors"
	"fmt"

	"sdfactory/internal/document"
)

// ErrUnsupportedKind reports a registration-number kind outside the frozen
// table. Validated input can never produce it.
var ErrUnsupportedKind = errors.New("unsupported registration number kind")

// table is frozen; two profiles only ever differ by prefix.
var table = map[document.RegistrationNumberKind]string{
	document.RegKindTaxID:   "local",
	document.RegKindVatID:   "vatID",
	document.RegKindEUID:    "EUID",
	document.RegKindEORI:    "EORI",
	document.RegKindLEICode: "leiCode",
}

// Mapper resolves registration-number kinds under one profile prefix.
// It is pure and safe for unsynchronized concurrent use.
type Mapper struct {
	prefix string
}

// New returns a Mapper for the given profile prefix, e.g. "gx:".
func New(prefix string) Mapper {
	return Mapper{prefix: prefix}
}

// Resolve returns the namespaced property key for kind.
func (m Mapper) Resolve(kind document.RegistrationNumberKind) (string, error) {
	suffix, ok := table[kind]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedKind, kind)
	}
	return m.prefix + suffix, nil
}
