package ratesapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Latest(t *testing.T) {
	response := `{"base": "EUR", "date": "2018-08-27", "rates": {"USD": 1.18, "GBP": 0.9}}`
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/latest", req.URL.Path)
		assert.Equal(t, "EUR", req.URL.Query().Get("base"))
		_, _ = rw.Write([]byte(response))
	}))
	defer server.Close()

	s := NewService(server.URL+"/", 5*time.Second)

	payload, err := s.Latest(context.Background(), "EUR")

	require.NoError(t, err)
	assert.Equal(t, response, string(payload))
}

func TestService_LatestBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
		_, _ = rw.Write([]byte(`{"base": "EUR", "rates": {}}`))
	}))
	defer server.Close()

	s := NewService(server.URL, 5*time.Second)

	payload, err := s.Latest(context.Background(), "EUR")

	assert.Nil(t, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestService_LatestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = rw.Write([]byte("{}"))
	}))
	defer server.Close()

	s := NewService(server.URL, 1*time.Millisecond)

	_, err := s.Latest(context.Background(), "EUR")

	assert.Error(t, err)
}

func TestService_LatestCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		select {
		case <-release:
		case <-req.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	s := NewService(server.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Latest(ctx, "EUR")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoggingService_Latest(t *testing.T) {
	var buf bytes.Buffer
	next := &mock{payloads: [][]byte{[]byte(`{"base": "EUR", "rates": {}}`)}}
	s := NewLoggingService(log.NewLogfmtLogger(&buf), next)

	_, err := s.Latest(context.Background(), "EUR")

	require.NoError(t, err)
	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "method=latest")
	assert.Contains(t, line, "base=EUR")
	assert.Contains(t, line, "bytes=28")
	assert.Contains(t, line, "err=null")
}
