// Package config loads and validates the deployment configuration. The
// profile, sink and key material are selected here once; nothing in the
// pipeline re-reads configuration at request time.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sdfactory/internal/assemble"
	"sdfactory/internal/credential"
	"sdfactory/internal/dispatch"
	"sdfactory/internal/terms"
	dErrors "sdfactory/pkg/domain-errors"
)

// Config is the full deployment configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Profile   string    `yaml:"profile"`
	Issuance  Issuance  `yaml:"issuance"`
	Contexts  Contexts  `yaml:"contexts"`
	Terms     Terms     `yaml:"terms"`
	Wallet    Wallet    `yaml:"wallet"`
	Dispatch  Dispatch  `yaml:"dispatch"`
	Signing   Signing   `yaml:"signing"`
	LogFormat string    `yaml:"log_format"`
}

// Server captures HTTP server and authorization gate configuration.
type Server struct {
	Addr        string `yaml:"addr"`
	EnforceAuth bool   `yaml:"enforce_auth"`
	JWT         JWT    `yaml:"jwt"`
}

// JWT configures validation of caller access tokens.
type JWT struct {
	SigningKey string `yaml:"signing_key"`
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
}

// Issuance configures the credential envelope builder.
type Issuance struct {
	BaseURI      string `yaml:"base_uri"`
	Issuer       string `yaml:"issuer"`
	DurationDays int    `yaml:"duration_days"`
}

// Contexts carries the schema URIs stamped on emitted credentials.
type Contexts struct {
	Participant string `yaml:"participant"`
	Service     string `yaml:"service"`
	CatenaX     string `yaml:"catena_x"`
	Schema2210  string `yaml:"schema_2210"`
}

// Terms configures resolution of terms-and-conditions documents.
type Terms struct {
	MaxRedirects   int `yaml:"max_redirects"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the fetch timeout.
func (t Terms) Timeout() time.Duration { return time.Duration(t.TimeoutSeconds) * time.Second }

// Wallet configures the custodian wallet lookup.
type Wallet struct {
	URL            string `yaml:"url"`
	TokenURL       string `yaml:"token_url"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the lookup timeout.
func (w Wallet) Timeout() time.Duration { return time.Duration(w.TimeoutSeconds) * time.Second }

// Dispatch selects and parameterizes the downstream sink.
type Dispatch struct {
	Target             string `yaml:"target"`
	ClearingHouseURL   string `yaml:"clearing_house_url"`
	LegalPersonURL     string `yaml:"legal_person_url"`
	ServiceOfferingURL string `yaml:"service_offering_url"`
	TokenURL           string `yaml:"token_url"`
	ClientID           string `yaml:"client_id"`
	ClientSecret       string `yaml:"client_secret"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-push delivery timeout.
func (d Dispatch) Timeout() time.Duration { return time.Duration(d.TimeoutSeconds) * time.Second }

// Signing configures the local proof backend for profiles that sign.
type Signing struct {
	KeyFile            string            `yaml:"key_file"`
	VerificationMethod string            `yaml:"verification_method"`
	CertificateFiles   map[string]string `yaml:"certificate_files"`
	SelfVerify         bool              `yaml:"self_verify"`
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, dErrors.Wrapf(err, dErrors.CodeConfiguration, "reading config file %q", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, dErrors.Wrapf(err, dErrors.CodeConfiguration, "parsing config file %q", path)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: Server{
			Addr:        ":8080",
			EnforceAuth: true,
		},
		Profile: string(assemble.ProfileTagus),
		Issuance: Issuance{
			DurationDays: credential.DefaultDurationDays,
		},
		Contexts: Contexts{
			Participant: "https://registry.gaia-x.eu/v2206/api/shape/files?file=participant&type=ttl#",
			Service:     "https://registry.gaia-x.eu/v2206/api/shape/files?file=service-offering&type=ttl#",
			CatenaX:     "https://w3id.org/catena-x/core#",
			Schema2210:  "https://w3id.org/catena-x/schema/2210#",
		},
		Terms: Terms{
			MaxRedirects:   terms.DefaultMaxRedirects,
			TimeoutSeconds: 30,
		},
		Wallet:   Wallet{TimeoutSeconds: 30},
		Dispatch: Dispatch{TimeoutSeconds: 30},
	}
}

// applyEnv overrides file values with environment variables, covering the
// secrets a deployment should not keep on disk.
func (c *Config) applyEnv() {
	set := func(target *string, key string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	set(&c.Server.Addr, "SDFACTORY_ADDR")
	set(&c.Profile, "SDFACTORY_PROFILE")
	set(&c.Server.JWT.SigningKey, "SDFACTORY_JWT_SIGNING_KEY")
	set(&c.Wallet.ClientSecret, "SDFACTORY_WALLET_CLIENT_SECRET")
	set(&c.Dispatch.ClientSecret, "SDFACTORY_DISPATCH_CLIENT_SECRET")
}

// Validate checks the settings that cannot be defaulted. A deployment with
// a broken configuration must fail at startup, never limp along.
func (c Config) Validate() error {
	profile := assemble.Profile(c.Profile)
	if !profile.Known() {
		return dErrors.Newf(dErrors.CodeConfiguration, "unknown conversion profile %q", c.Profile)
	}
	if c.Issuance.BaseURI == "" {
		return dErrors.New(dErrors.CodeConfiguration, "issuance.base_uri is required")
	}
	if c.Wallet.URL == "" {
		return dErrors.New(dErrors.CodeConfiguration, "wallet.url is required")
	}
	if c.Server.EnforceAuth && c.Server.JWT.SigningKey == "" {
		return dErrors.New(dErrors.CodeConfiguration, "server.jwt.signing_key is required when auth is enforced")
	}
	if profile.Signs() {
		if c.Signing.KeyFile == "" {
			return dErrors.Newf(dErrors.CodeConfiguration, "signing.key_file is required for profile %q", c.Profile)
		}
		if c.Signing.VerificationMethod == "" {
			return dErrors.Newf(dErrors.CodeConfiguration, "signing.verification_method is required for profile %q", c.Profile)
		}
		if c.Signing.SelfVerify {
			if _, ok := c.Signing.CertificateFiles[c.Signing.VerificationMethod]; !ok {
				return dErrors.Newf(dErrors.CodeConfiguration,
					"signing.certificate_files must cover %q when self-verification is on", c.Signing.VerificationMethod)
			}
		}
	}
	if _, err := c.DispatchConfig(); err != nil {
		return err
	}
	return nil
}

// ConversionProfile returns the validated active profile.
func (c Config) ConversionProfile() assemble.Profile {
	return assemble.Profile(c.Profile)
}

// AssembleContexts maps the configured schema URIs into the assembler's
// context set.
func (c Config) AssembleContexts() assemble.Contexts {
	return assemble.Contexts{
		Participant: c.Contexts.Participant,
		Service:     c.Contexts.Service,
		CatenaX:     c.Contexts.CatenaX,
		Schema2210:  c.Contexts.Schema2210,
	}
}

// DispatchConfig maps the dispatch section onto the sink constructor's
// configuration and validates the target.
func (c Config) DispatchConfig() (dispatch.Config, error) {
	target := dispatch.Target(c.Dispatch.Target)
	switch target {
	case dispatch.TargetClearingHouse, dispatch.TargetCatalog:
	default:
		return dispatch.Config{}, dErrors.Newf(dErrors.CodeConfiguration, "unknown dispatch target %q", c.Dispatch.Target)
	}
	return dispatch.Config{
		Target:             target,
		ClearingHouseURL:   c.Dispatch.ClearingHouseURL,
		LegalPersonURL:     c.Dispatch.LegalPersonURL,
		ServiceOfferingURL: c.Dispatch.ServiceOfferingURL,
		Credentials: dispatch.Credentials{
			TokenURL:     c.Dispatch.TokenURL,
			ClientID:     c.Dispatch.ClientID,
			ClientSecret: c.Dispatch.ClientSecret,
		},
		Timeout: c.Dispatch.Timeout(),
	}, nil
}
