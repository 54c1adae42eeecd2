package proof

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdfactory/internal/credential"
	dErrors "sdfactory/pkg/domain-errors"
)

const testMethod = "did:web:sd.example.com#key-1"

// testKeyMaterial returns a PEM private key and a matching self-signed
// certificate for testMethod.
func testKeyMaterial(t *testing.T) (keyPEM, certPEM []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "sd.example.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return keyPEM, certPEM
}

func testCredential() credential.Credential {
	builder := credential.NewBuilder("https://sd.example.com", 90,
		credential.WithIssuer("did:web:issuer"),
		credential.WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
		credential.WithIDSource(func() string { return "fixed" }),
	)
	subject := credential.NewSubject().
		Set("type", "gx:LegalPerson").
		Set("id", "did:web:wallet/B1").
		Set("gx:name", "Acme GmbH")
	return builder.Issue(credential.KindLegalPerson, []string{"https://registry.gaia-x.eu/participant"}, subject)
}

func TestLocalSigner_RoundTrip(t *testing.T) {
	keyPEM, certPEM := testKeyMaterial(t)

	signer, err := NewLocalSigner(keyPEM, testMethod)
	require.NoError(t, err)
	ring, err := NewKeyRing(map[string][]byte{testMethod: certPEM})
	require.NoError(t, err)

	unsigned := testCredential()
	signed, err := signer.Sign(context.Background(), unsigned)
	require.NoError(t, err)

	// The input credential stays untouched.
	assert.Nil(t, unsigned.Proof)

	require.NotNil(t, signed.Proof)
	assert.Equal(t, ProofType, signed.Proof.Type)
	assert.Equal(t, PurposeAssertion, signed.Proof.ProofPurpose)
	assert.Equal(t, testMethod, signed.Proof.VerificationMethod)
	assert.NotEmpty(t, signed.Proof.JWS)

	verify, err := ring.PredicateFor(testMethod)
	require.NoError(t, err)
	assert.True(t, verify(signed))
}

func TestLocalSigner_ProofIndependentOfSigningInput(t *testing.T) {
	keyPEM, _ := testKeyMaterial(t)
	signer, err := NewLocalSigner(keyPEM, testMethod)
	require.NoError(t, err)

	signed, err := signer.Sign(context.Background(), testCredential())
	require.NoError(t, err)

	// Re-signing a signed credential replaces the proof, so signing input
	// must not depend on an existing proof.
	again, err := signer.Sign(context.Background(), signed)
	require.NoError(t, err)

	a, err := signed.SigningInput()
	require.NoError(t, err)
	b, err := again.SigningInput()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKeyRing_MutatedCredentialFailsVerification(t *testing.T) {
	keyPEM, certPEM := testKeyMaterial(t)
	signer, err := NewLocalSigner(keyPEM, testMethod)
	require.NoError(t, err)
	ring, err := NewKeyRing(map[string][]byte{testMethod: certPEM})
	require.NoError(t, err)
	verify, err := ring.PredicateFor(testMethod)
	require.NoError(t, err)

	signed, err := signer.Sign(context.Background(), testCredential())
	require.NoError(t, err)
	require.True(t, verify(signed))

	tampered := signed.Clone()
	tampered.Subject.Set("gx:name", "Acme GmbI")
	assert.False(t, verify(tampered))
}

func TestKeyRing_VerdictsForBrokenProofs(t *testing.T) {
	keyPEM, certPEM := testKeyMaterial(t)
	signer, err := NewLocalSigner(keyPEM, testMethod)
	require.NoError(t, err)
	ring, err := NewKeyRing(map[string][]byte{testMethod: certPEM})
	require.NoError(t, err)
	verify, err := ring.PredicateFor(testMethod)
	require.NoError(t, err)

	t.Run("no proof", func(t *testing.T) {
		assert.False(t, verify(testCredential()))
	})

	t.Run("garbled jws", func(t *testing.T) {
		signed, err := signer.Sign(context.Background(), testCredential())
		require.NoError(t, err)
		broken := signed.WithProof(credential.Proof{
			Type:               ProofType,
			VerificationMethod: testMethod,
			JWS:                "not.a.jws",
		})
		assert.False(t, verify(broken))
	})

	t.Run("foreign key", func(t *testing.T) {
		otherKeyPEM, _ := testKeyMaterial(t)
		other, err := NewLocalSigner(otherKeyPEM, testMethod)
		require.NoError(t, err)
		signed, err := other.Sign(context.Background(), testCredential())
		require.NoError(t, err)
		assert.False(t, verify(signed))
	})
}

func TestKeyRing_UnknownMethod(t *testing.T) {
	_, certPEM := testKeyMaterial(t)
	ring, err := NewKeyRing(map[string][]byte{testMethod: certPEM})
	require.NoError(t, err)

	_, err = ring.PredicateFor("did:web:sd.example.com#key-2")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func TestNewLocalSigner_BadKeyMaterial(t *testing.T) {
	_, err := NewLocalSigner([]byte("not a pem"), testMethod)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))

	keyPEM, _ := testKeyMaterial(t)
	_, err = NewLocalSigner(keyPEM, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}
