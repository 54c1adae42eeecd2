package credential

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDurationDays is the credential validity applied when the
// deployment does not configure one.
const DefaultDurationDays = 90

// Builder wraps subjects into dated credential envelopes. It is read-only
// after construction and safe for concurrent use.
type Builder struct {
	baseURI  string
	issuer   string
	duration time.Duration
	now      func() time.Time
	newID    func() string
}

// BuilderOption customizes a Builder, mainly for tests.
type BuilderOption func(*Builder)

// WithClock overrides the issuance clock.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithIDSource overrides the unique-id source.
func WithIDSource(newID func() string) BuilderOption {
	return func(b *Builder) { b.newID = newID }
}

// WithIssuer sets the issuer reference stamped on every envelope.
func WithIssuer(issuer string) BuilderOption {
	return func(b *Builder) { b.issuer = issuer }
}

// NewBuilder constructs a Builder issuing ids under baseURI with the given
// validity in days (default applied when zero or negative).
func NewBuilder(baseURI string, durationDays int, opts ...BuilderOption) *Builder {
	if durationDays <= 0 {
		durationDays = DefaultDurationDays
	}
	b := &Builder{
		baseURI:  strings.TrimRight(baseURI, "/"),
		duration: time.Duration(durationDays) * 24 * time.Hour,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Issue wraps one subject into a credential envelope: a freshly generated
// kind-namespaced id, issuanceDate = now and expirationDate = now + the
// configured duration. The subject is cloned so later builder calls can
// never alter an issued credential.
func (b *Builder) Issue(kind string, contexts []string, subject *Subject) Credential {
	now := b.now()
	return Credential{
		Kind:           kind,
		Contexts:       append([]string(nil), contexts...),
		ID:             fmt.Sprintf("%s/%s/%s", b.baseURI, kind, b.newID()),
		Types:          []string{"VerifiableCredential"},
		Issuer:         b.issuer,
		IssuanceDate:   now,
		ExpirationDate: now.Add(b.duration),
		Subject:        subject.Clone(),
	}
}

// HolderID returns the identity reference used for subjects and the
// terms-and-conditions idempotence check, e.g. "<base>/bpn/<holder>".
func (b *Builder) HolderID(holder string) string {
	return fmt.Sprintf("%s/bpn/%s", b.baseURI, holder)
}
