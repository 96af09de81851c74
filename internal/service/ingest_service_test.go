package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/domain"
)

func sampleDeploy() domain.RouteDeploy {
	return domain.RouteDeploy{
		Metadata: domain.Route{Name: "route-hello", Encodings: []domain.Encoding{domain.EncodingTextPlain}},
		Source:   []byte("\x00asm\x01\x00\x00\x00"),
	}
}

func newIngest(t *testing.T, handler http.HandlerFunc) *IngestService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewIngestService(IngestOption{Endpoint: srv.URL})
}

func TestIngest_Success(t *testing.T) {
	want, err := sampleDeploy().Marshal()
	require.NoError(t, err)

	s := newIngest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got, _ := io.ReadAll(r.Body)
		assert.Equal(t, want, got)
		_, _ = w.Write([]byte("deployed route-hello"))
	})

	text, err := s.Upload(context.Background(), sampleDeploy())
	require.NoError(t, err)
	assert.Equal(t, "deployed route-hello", text)
}

func TestIngest_StatusMapping(t *testing.T) {
	s := newIngest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})
	_, err := s.Upload(context.Background(), sampleDeploy())
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Equal(t, "payload too large, gzip under 2MB", err.Error())

	s = newIngest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = s.Upload(context.Background(), sampleDeploy())
	var se *IngestStatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Contains(t, err.Error(), "502")
}

func TestIngest_InvalidUTF8(t *testing.T) {
	s := newIngest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe, 0xfd})
	})
	_, err := s.Upload(context.Background(), sampleDeploy())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestIngest_PrecheckSkipsNetwork(t *testing.T) {
	called := false
	s := newIngest(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	deploy := sampleDeploy()
	deploy.Source = make([]byte, consts.MaxModuleGzipBytes+4096)
	_, _ = rand.Read(deploy.Source)

	_, err := s.Upload(context.Background(), deploy)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.False(t, called)
}
