// Package terms resolves terms-and-conditions URLs into verifiable
// {URL, hash} records.
package terms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	dErrors "sdfactory/pkg/domain-errors"
)

// DefaultMaxRedirects bounds redirect following when the deployment does
// not configure a limit.
const DefaultMaxRedirects = 5

// Record proves that the content behind URL hashed to Hash at resolution
// time. URL is the originally requested location even when the content was
// served after redirects.
type Record struct {
	URL  string
	Hash string
}

// Resolver fetches terms documents with a bounded redirect budget and
// request timeout. Safe for concurrent use.
type Resolver struct {
	client       *http.Client
	maxRedirects int
}

// New builds a Resolver. The timeout bounds the whole fetch including
// redirects so a hanging terms host can never stall issuance indefinitely.
func New(timeout time.Duration, maxRedirects int) *Resolver {
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	r := &Resolver{maxRedirects: maxRedirects}
	r.client = &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > r.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", r.maxRedirects)
			}
			return nil
		},
	}
	return r
}

// Resolve fetches url, following at most the configured number of
// redirects, and streams the final response body through SHA-256.
func (r *Resolver) Resolve(ctx context.Context, url string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("invalid terms URL %q", url))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeUpstream, fmt.Sprintf("could not retrieve terms and conditions from %q", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Record{}, dErrors.Newf(dErrors.CodeUpstream, "terms and conditions host %q answered status %d", url, resp.StatusCode)
	}

	hasher := sha256.New()
	if _, err := io.Copy(hasher, resp.Body); err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeUpstream, fmt.Sprintf("could not read terms and conditions from %q", url))
	}

	return Record{
		URL:  url,
		Hash: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// ResolveAll resolves several URLs in parallel, failing fast on the first
// error. Record order matches input order regardless of completion order.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) ([]Record, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	records := make([]Record, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			rec, err := r.Resolve(ctx, url)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
