package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/air-quality-etl/internal/config"
	"github.com/i474232898/air-quality-etl/internal/retry"
)

var (
	errUpstreamStatus = errors.New("upstream status")
	errCircuitOpen    = errors.New("circuit breaker open")
)

// Fetcher issues one hourly air-quality request per city with bounded
// retries and a fixed backoff. A circuit breaker guards the upstream so a
// dead provider stops burning attempts across the whole city list.
type Fetcher struct {
	client  *http.Client
	baseURL string
	fields  []string
	policy  retry.Policy
	circuit *gobreaker.CircuitBreaker
}

// NewFetcher wires a fetcher for the configured upstream.
func NewFetcher(client *http.Client, baseURL string, fields []string, policy retry.Policy) *Fetcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "air-quality-upstream",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Fetcher{
		client:  client,
		baseURL: baseURL,
		fields:  fields,
		policy:  policy,
		circuit: cb,
	}
}

// Fetch retrieves the hourly payload for one city, retrying transient
// failures up to the policy limit. Returns the raw response body.
func (f *Fetcher) Fetch(ctx context.Context, city config.City) ([]byte, error) {
	u, err := f.buildURL(city)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Printf("extract: fetching %s (attempt %d/%d)", city.Name, attempt, f.policy.MaxAttempts)

		body, err := f.doRequest(ctx, u)
		if err == nil {
			return body, nil
		}

		// An open circuit means the upstream is down for everyone;
		// retrying this city is pointless.
		if errors.Is(err, errCircuitOpen) {
			return nil, err
		}

		log.Printf("extract: request failed for %s: %v", city.Name, err)
		lastErr = err

		if attempt < f.policy.MaxAttempts {
			if werr := f.policy.Wait(ctx); werr != nil {
				return nil, werr
			}
		}
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", city.Name, f.policy.MaxAttempts, lastErr)
}

func (f *Fetcher) doRequest(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	result, err := f.circuit.Execute(func() (interface{}, error) {
		resp, execErr := f.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("%w %d", errUpstreamStatus, resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

func (f *Fetcher) buildURL(city config.City) (string, error) {
	base, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%g", city.Lat))
	values.Set("longitude", fmt.Sprintf("%g", city.Lon))
	values.Set("hourly", strings.Join(f.fields, ","))
	base.RawQuery = values.Encode()

	return base.String(), nil
}
