package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	dErrors "sdfactory/pkg/domain-errors"
)

// Client fetches holder metadata from the custodian wallet HTTP API,
// authenticating with OAuth2 client credentials.
type Client struct {
	baseURL string
	http    *http.Client
}

// Credentials configures the wallet's token endpoint.
type Credentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// NewClient builds a wallet client. With empty credentials the client calls
// the wallet unauthenticated, which only makes sense against local stubs.
func NewClient(baseURL string, creds Credentials, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	if creds.TokenURL != "" {
		cfg := clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     creds.TokenURL,
		}
		// Reuse the timeout-bounded client for token requests as well.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = cfg.Client(ctx)
		httpClient.Timeout = timeout
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// WalletData implements Lookup against GET <base>/api/wallets/<holder>.
func (c *Client) WalletData(ctx context.Context, holder string) (Data, error) {
	endpoint := fmt.Sprintf("%s/api/wallets/%s", c.baseURL, url.PathEscape(holder))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Data{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not build wallet request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Data{}, dErrors.Wrap(err, dErrors.CodeUpstream, fmt.Sprintf("wallet lookup for %q failed", holder))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Data{}, dErrors.Newf(dErrors.CodeUpstream, "wallet answered status %d for holder %q", resp.StatusCode, holder)
	}

	var data Data
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Data{}, dErrors.Wrap(err, dErrors.CodeUpstream, "wallet returned an unreadable payload")
	}
	if data.DID == "" {
		return Data{}, dErrors.Newf(dErrors.CodeUpstream, "wallet returned no DID for holder %q", holder)
	}
	return data, nil
}
