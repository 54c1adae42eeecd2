package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sdfactory/internal/credential"
	dErrors "sdfactory/pkg/domain-errors"
)

// Credentials configures a sink's OAuth2 token endpoint.
type Credentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// authenticatedClient returns an HTTP client that attaches bearer tokens
// from the client-credentials grant, or a plain timeout-bounded client when
// no token endpoint is configured.
func authenticatedClient(creds Credentials, timeout time.Duration) *http.Client {
	httpClient := &http.Client{Timeout: timeout}
	if creds.TokenURL == "" {
		return httpClient
	}
	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	authed := cfg.Client(ctx)
	authed.Timeout = timeout
	return authed
}

// ClearingHouse posts the entire bundle in a single aggregate call. The
// clearing house countersigns and publishes, so bundles arrive unsigned.
type ClearingHouse struct {
	url  string
	http *http.Client
}

// NewClearingHouse builds the aggregate sink posting to url.
func NewClearingHouse(url string, creds Credentials, timeout time.Duration) *ClearingHouse {
	return &ClearingHouse{url: url, http: authenticatedClient(creds, timeout)}
}

type clearingHousePayload struct {
	ExternalID            string                  `json:"externalId"`
	VerifiableCredentials []credential.Credential `json:"verifiableCredentials"`
}

// Dispatch implements Sink with one POST carrying the whole bundle.
func (c *ClearingHouse) Dispatch(ctx context.Context, bundle credential.Bundle) error {
	body, err := json.Marshal(clearingHousePayload{
		ExternalID:            bundle.ExternalID,
		VerifiableCredentials: bundle.Credentials,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "serializing bundle")
	}
	return post(ctx, c.http, c.url, body, "clearing house")
}

func post(ctx context.Context, client *http.Client, url string, body []byte, sink string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not build dispatch request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, fmt.Sprintf("delivery to %s failed", sink))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.Newf(dErrors.CodeUpstream, "%s answered status %d", sink, resp.StatusCode)
	}
	return nil
}
