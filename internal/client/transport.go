package client

import (
	"net/http"
	"strings"
	"time"

	"chatgpt/internal/logger"
)

const masked = "***[MASKED]***"

// DebugTransport logs each round trip at debug level with credentials masked.
type DebugTransport struct {
	Base http.RoundTripper
}

// NewDebugTransport wraps base, or http.DefaultTransport when base is nil.
func NewDebugTransport(base http.RoundTripper) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{Base: base}
}

// RoundTrip implements http.RoundTripper.
func (dt *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger.Debug("HTTP request",
		"method", req.Method,
		"url", req.URL.String(),
		"headers", sanitizeHeaders(req.Header),
		"content_length", req.ContentLength)

	resp, err := dt.Base.RoundTrip(req)
	elapsed := time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		logger.Debug("HTTP request failed", "url", req.URL.String(), "error", err, "elapsed", elapsed)
		return resp, err
	}

	logger.Debug("HTTP response",
		"status", resp.Status,
		"headers", sanitizeHeaders(resp.Header),
		"content_length", resp.ContentLength,
		"elapsed", elapsed)
	return resp, nil
}

// sanitizeHeaders flattens headers, masking anything that may carry a credential.
func sanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))
	for name, values := range headers {
		value := strings.Join(values, ", ")
		lowerName := strings.ToLower(name)

		if strings.Contains(lowerName, "authorization") ||
			strings.Contains(lowerName, "api-key") ||
			strings.Contains(lowerName, "token") {
			if scheme, _, ok := strings.Cut(value, " "); ok {
				value = scheme + " " + masked
			} else {
				value = masked
			}
		}
		sanitized[name] = value
	}
	return sanitized
}
