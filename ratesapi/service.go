package ratesapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-fx-wallet"
)

const ApiUrlBase = "https://revolut.duckdns.org"

// maxPayloadSize caps how much of a response body is read
const maxPayloadSize = 1 << 20

// Service wraps the latest-rates REST API
type Service interface {
	// Latest returns the raw payload of the latest rates relative to base
	Latest(ctx context.Context, base wallet.Currency) ([]byte, error)
}

// service latest-rates API
type service struct {
	// url base API url
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid Service. An empty url means ApiUrlBase.
func NewService(url string, timeout time.Duration) Service {
	if url == "" {
		url = ApiUrlBase
	}
	return &service{
		url: strings.TrimSuffix(url, "/"),
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// Latest loads the current exchange rates for a given base currency.
// Either the complete body of a successful response or an error is returned.
func (s *service) Latest(ctx context.Context, base wallet.Currency) ([]byte, error) {
	u := fmt.Sprintf("%v/latest?base=%v", s.url, url.QueryEscape(string(base)))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, fmt.Errorf("http get [%v]: unexpected status %v", base, httpResponse.Status)
	}

	bytes, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(bytes) > maxPayloadSize {
		return nil, fmt.Errorf("reading body [%v]: payload exceeds %v bytes", base, maxPayloadSize)
	}

	return bytes, nil
}
