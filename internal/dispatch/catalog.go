package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sdfactory/internal/credential"
	dErrors "sdfactory/pkg/domain-errors"
)

// Catalog delivers each credential of a bundle to the federated catalog
// endpoint matching its kind: service offerings go to the offering
// endpoint, everything else to the legal-person endpoint. Delivery is
// sequential and fail-fast; a failed push leaves later credentials unsent.
type Catalog struct {
	legalPersonURL     string
	serviceOfferingURL string
	http               *http.Client
}

// NewCatalog builds the legacy catalog sink pair.
func NewCatalog(legalPersonURL, serviceOfferingURL string, creds Credentials, timeout time.Duration) *Catalog {
	return &Catalog{
		legalPersonURL:     legalPersonURL,
		serviceOfferingURL: serviceOfferingURL,
		http:               authenticatedClient(creds, timeout),
	}
}

// Dispatch implements Sink with one POST per credential.
func (c *Catalog) Dispatch(ctx context.Context, bundle credential.Bundle) error {
	for _, cred := range bundle.Credentials {
		url := c.legalPersonURL
		if cred.Kind == credential.KindServiceOffering {
			url = c.serviceOfferingURL
		}
		body, err := json.Marshal(cred)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "serializing credential")
		}
		if err := post(ctx, c.http, url, body, fmt.Sprintf("catalog (%s)", cred.Kind)); err != nil {
			return err
		}
	}
	return nil
}

// Config selects and parameterizes the active sink.
type Config struct {
	Target             Target
	ClearingHouseURL   string
	LegalPersonURL     string
	ServiceOfferingURL string
	Credentials        Credentials
	Timeout            time.Duration
}

// New builds the single configured sink. Exactly one target is active per
// deployment; an unknown target is a startup failure, never a fallback.
func New(cfg Config) (Sink, error) {
	switch cfg.Target {
	case TargetClearingHouse:
		if cfg.ClearingHouseURL == "" {
			return nil, dErrors.New(dErrors.CodeConfiguration, "clearing house URL is required")
		}
		return NewClearingHouse(cfg.ClearingHouseURL, cfg.Credentials, cfg.Timeout), nil
	case TargetCatalog:
		if cfg.LegalPersonURL == "" || cfg.ServiceOfferingURL == "" {
			return nil, dErrors.New(dErrors.CodeConfiguration, "both catalog URLs are required")
		}
		return NewCatalog(cfg.LegalPersonURL, cfg.ServiceOfferingURL, cfg.Credentials, cfg.Timeout), nil
	default:
		return nil, dErrors.Newf(dErrors.CodeConfiguration, "unknown dispatch target %q", cfg.Target)
	}
}
