package client

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgpt/internal/logger"
	"chatgpt/pkg/chattypes"
)

func TestSanitizeHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer sk-very-secret")
	headers.Set("X-Api-Key", "plainsecret")
	headers.Set("Content-Type", "application/json")

	got := sanitizeHeaders(headers)

	assert.Equal(t, "Bearer "+masked, got["Authorization"])
	assert.Equal(t, masked, got["X-Api-Key"])
	assert.Equal(t, "application/json", got["Content-Type"])
}

func TestDebugTransport_LogsWithoutKey(t *testing.T) {
	_, err := logger.Configure("debug", "")
	require.NoError(t, err)
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() {
		_, err := logger.Configure("info", "")
		require.NoError(t, err)
	})

	server, _ := newServer(t, http.StatusOK, okResponse, nil)
	hc := &http.Client{Transport: NewDebugTransport(nil)}

	_, err = New(WithHTTPClient(hc)).Complete(context.Background(),
		chattypes.Config{URL: server.URL, Model: "m", Key: "sk-very-secret"}, nil)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "HTTP request")
	assert.Contains(t, logs.String(), "HTTP response")
	assert.NotContains(t, logs.String(), "sk-very-secret")
}
