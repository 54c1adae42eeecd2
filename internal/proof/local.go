package proof

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"

	"sdfactory/internal/credential"
	dErrors "sdfactory/pkg/domain-errors"
)

// signatureAlgorithms is the closed set accepted when parsing proofs.
var signatureAlgorithms = []jose.SignatureAlgorithm{jose.PS256}

// LocalSigner signs credentials with an RSA key held in process, producing
// PS256 compact JWS proofs. It is read-only after construction and safe for
// concurrent use.
type LocalSigner struct {
	signer jose.Signer
	method string
	now    func() time.Time
}

// LocalSignerOption customizes a LocalSigner.
type LocalSignerOption func(*LocalSigner)

// WithClock overrides the proof-creation clock.
func WithClock(now func() time.Time) LocalSignerOption {
	return func(s *LocalSigner) { s.now = now }
}

// NewLocalSigner builds a signer from a PEM-encoded RSA private key (PKCS#1
// or PKCS#8) and the verification-method reference stamped on every proof.
func NewLocalSigner(pemKey []byte, method string, opts ...LocalSignerOption) (*LocalSigner, error) {
	key, err := parsePrivateKey(pemKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "loading signing key")
	}
	if method == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "verification method is required")
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.PS256, Key: key}, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "building JWS signer")
	}

	s := &LocalSigner{signer: signer, method: method, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign returns a signed copy of cred. The proof is computed over the
// credential's canonical serialization with the proof omitted, so signing
// an already-signed credential replaces the proof rather than layering it.
func (s *LocalSigner) Sign(_ context.Context, cred credential.Credential) (credential.Credential, error) {
	input, err := cred.SigningInput()
	if err != nil {
		return credential.Credential{}, dErrors.Wrap(err, dErrors.CodeCrypto, "serializing credential for signing")
	}

	obj, err := s.signer.Sign(input)
	if err != nil {
		return credential.Credential{}, dErrors.Wrap(err, dErrors.CodeCrypto, "signing credential")
	}
	jws, err := obj.CompactSerialize()
	if err != nil {
		return credential.Credential{}, dErrors.Wrap(err, dErrors.CodeCrypto, "serializing proof")
	}

	return cred.WithProof(credential.Proof{
		Type:               ProofType,
		Created:            s.now().UTC(),
		ProofPurpose:       PurposeAssertion,
		VerificationMethod: s.method,
		JWS:                jws,
	}), nil
}

// KeyRing resolves verification methods to public keys loaded at startup.
// The map is frozen at construction.
type KeyRing struct {
	keys map[string]*rsa.PublicKey
}

// NewKeyRing builds a key ring from PEM-encoded X.509 certificates, keyed
// by verification-method reference.
func NewKeyRing(certs map[string][]byte) (*KeyRing, error) {
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for method, pemCert := range certs {
		key, err := parseCertificateKey(pemCert)
		if err != nil {
			return nil, dErrors.Wrapf(err, dErrors.CodeConfiguration, "loading certificate for %q", method)
		}
		keys[method] = key
	}
	return &KeyRing{keys: keys}, nil
}

// PredicateFor returns a predicate verifying proofs issued under method.
// The predicate checks that the proof parses as a PS256 compact JWS, that
// the signature verifies under the method's key, and that the signed
// payload matches the credential's current canonical serialization.
func (r *KeyRing) PredicateFor(method string) (func(credential.Credential) bool, error) {
	key, ok := r.keys[method]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeConfiguration, "no public key for verification method %q", method)
	}
	return func(cred credential.Credential) bool {
		if cred.Proof == nil || cred.Proof.JWS == "" {
			return false
		}
		obj, err := jose.ParseSigned(cred.Proof.JWS, signatureAlgorithms)
		if err != nil {
			return false
		}
		payload, err := obj.Verify(key)
		if err != nil {
			return false
		}
		input, err := cred.SigningInput()
		if err != nil {
			return false
		}
		return bytes.Equal(payload, input)
	}, nil
}

func parsePrivateKey(pemKey []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("not an RSA key: %T", parsed)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
}

func parseCertificateKey(pemCert []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemCert)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate does not carry an RSA key: %T", cert.PublicKey)
	}
	return key, nil
}
