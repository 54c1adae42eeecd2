package main

import (
	"os"

	"sdfactory/internal/credential"
	"sdfactory/internal/platform/config"
	"sdfactory/internal/proof"
	dErrors "sdfactory/pkg/domain-errors"
)

// loadSigner reads the configured private key and builds the local signer.
func loadSigner(cfg config.Signing) (proof.Signer, error) {
	keyPEM, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return nil, dErrors.Wrapf(err, dErrors.CodeConfiguration, "reading signing key %q", cfg.KeyFile)
	}
	return proof.NewLocalSigner(keyPEM, cfg.VerificationMethod)
}

// loadVerifier reads the configured certificates and returns the predicate
// for the deployment's own verification method.
func loadVerifier(cfg config.Signing) (func(credential.Credential) bool, error) {
	certs := make(map[string][]byte, len(cfg.CertificateFiles))
	for method, path := range cfg.CertificateFiles {
		pemCert, err := os.ReadFile(path)
		if err != nil {
			return nil, dErrors.Wrapf(err, dErrors.CodeConfiguration, "reading certificate %q", path)
		}
		certs[method] = pemCert
	}
	ring, err := proof.NewKeyRing(certs)
	if err != nil {
		return nil, err
	}
	return ring.PredicateFor(cfg.VerificationMethod)
}
