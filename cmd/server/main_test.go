package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sdfactory/internal/platform/config"
	dErrors "sdfactory/pkg/domain-errors"
)

func unsignedConfig() config.Config {
	return config.Config{
		Profile: "tagus",
		Issuance: config.Issuance{
			BaseURI:      "https://sd.example.com",
			Issuer:       "did:web:issuer.example.com",
			DurationDays: 90,
		},
		Terms:  config.Terms{MaxRedirects: 5, TimeoutSeconds: 30},
		Wallet: config.Wallet{URL: "https://wallet.example.com", TimeoutSeconds: 30},
		Dispatch: config.Dispatch{
			Target:           "clearing-house",
			ClearingHouseURL: "https://clearing.example.com/api/credentials",
			TimeoutSeconds:   30,
		},
	}
}

func writeKeyFile(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "signing.pem")
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(path, pemKey, 0o600))
	return path
}

func TestBuildPipeline_UnsignedProfile(t *testing.T) {
	svc, err := buildPipeline(unsignedConfig(), slog.Default())
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestBuildPipeline_SigningProfile(t *testing.T) {
	cfg := unsignedConfig()
	cfg.Profile = "gaia-x"
	cfg.Signing = config.Signing{
		KeyFile:            writeKeyFile(t),
		VerificationMethod: "did:web:issuer.example.com#key-1",
	}

	svc, err := buildPipeline(cfg, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestBuildPipeline_MissingSigningKeyFails(t *testing.T) {
	cfg := unsignedConfig()
	cfg.Profile = "gaia-x"
	cfg.Signing = config.Signing{
		KeyFile:            filepath.Join(t.TempDir(), "absent.pem"),
		VerificationMethod: "did:web:issuer.example.com#key-1",
	}

	_, err := buildPipeline(cfg, slog.Default())
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}
