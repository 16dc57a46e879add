package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgpt/pkg/chattypes"
)

const okResponse = `{
  "id": "chatcmpl-123",
  "object": "chat.completion",
  "created": 1677652288,
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "Hello there!"},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
}`

type recordingReplier struct {
	replies []string
}

func (r *recordingReplier) Reply(content string) {
	r.replies = append(r.replies, content)
}

func newServer(t *testing.T, status int, body string, inspect func(r *http.Request, body []byte)) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if inspect != nil {
			inspect(r, data)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultTimeout, c.Timeout())
	assert.NotNil(t, c.httpClient)
	assert.Nil(t, c.out)
}

func TestNew_WithTimeoutIgnoresNonPositive(t *testing.T) {
	assert.Equal(t, DefaultTimeout, New(WithTimeout(0)).Timeout())
	assert.Equal(t, 5*time.Second, New(WithTimeout(5*time.Second)).Timeout())
}

func TestComplete_RequestConstruction(t *testing.T) {
	server, hits := newServer(t, http.StatusOK, okResponse, func(r *http.Request, body []byte) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var got map[string]interface{}
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, map[string]interface{}{
			"model": "m",
			"messages": []interface{}{
				map[string]interface{}{"role": "user", "content": "a"},
			},
		}, got)
	})

	c := New()
	cfg := chattypes.Config{URL: server.URL + "/v1/chat/completions", Model: "m", Key: "sk-test"}
	msg, err := c.Complete(context.Background(), cfg, []chattypes.Message{
		chattypes.NewMessage(chattypes.RoleUser, "a"),
	})

	require.NoError(t, err)
	assert.Equal(t, chattypes.NewMessage(chattypes.RoleAssistant, "Hello there!"), msg)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestComplete_UserAgent(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, okResponse, func(r *http.Request, _ []byte) {
		assert.Equal(t, "chat/1.0.0", r.Header.Get("User-Agent"))
	})

	_, err := New(WithUserAgent("chat/1.0.0")).Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)
	require.NoError(t, err)
}

func TestComplete_EmptyKeyStillSendsBearer(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, okResponse, func(r *http.Request, _ []byte) {
		assert.Equal(t, "Bearer", r.Header.Get("Authorization"))
	})

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL, Model: "m"}, nil)
	require.NoError(t, err)
}

func TestComplete_NilMessagesEncodeAsEmptyArray(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, okResponse, func(_ *http.Request, body []byte) {
		assert.JSONEq(t, `{"model":"m","messages":[]}`, string(body))
	})

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL, Model: "m"}, nil)
	require.NoError(t, err)
}

func TestComplete_EchoesReply(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, okResponse, nil)
	replier := &recordingReplier{}

	_, err := New(WithOutput(replier)).Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello there!"}, replier.replies)
}

func TestComplete_EmptyURL(t *testing.T) {
	_, err := New().Complete(context.Background(), chattypes.Config{Model: "m"}, nil)
	assert.ErrorIs(t, err, chattypes.ErrInvalidConfig)
}

func TestComplete_KeyWithNewline(t *testing.T) {
	server, hits := newServer(t, http.StatusOK, okResponse, nil)

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL, Key: "sk\r\nX-Injected: 1"}, nil)

	assert.ErrorIs(t, err, chattypes.ErrInvalidConfig)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestComplete_RemoteErrorObject(t *testing.T) {
	body := `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`
	server, _ := newServer(t, http.StatusUnauthorized, body, nil)
	replier := &recordingReplier{}

	_, err := New(WithOutput(replier)).Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, chattypes.ErrRemote)

	var remote *chattypes.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusUnauthorized, remote.StatusCode)
	assert.Equal(t, "Incorrect API key provided", remote.Message)
	assert.Equal(t, "invalid_request_error", remote.Type)
	assert.Equal(t, "invalid_api_key", remote.Code)
	assert.Empty(t, replier.replies)
}

func TestComplete_ErrorObjectWithOKStatus(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, `{"error":{"message":"model overloaded","type":"server_error","code":null}}`, nil)

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)

	var remote *chattypes.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusOK, remote.StatusCode)
	assert.Equal(t, "model overloaded", remote.Message)
	assert.Empty(t, remote.Code)
}

func TestComplete_NonJSONFailure(t *testing.T) {
	server, _ := newServer(t, http.StatusBadGateway, "upstream unavailable", nil)

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)

	var remote *chattypes.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusBadGateway, remote.StatusCode)
	assert.Equal(t, "upstream unavailable", remote.Message)
}

func TestComplete_EmptyFailureBodyUsesStatusText(t *testing.T) {
	server, _ := newServer(t, http.StatusInternalServerError, "", nil)

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)

	var remote *chattypes.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "Internal Server Error", remote.Message)
}

func TestSummarize_TruncatesOnRuneBoundary(t *testing.T) {
	// "é" straddles the byte limit.
	body := strings.Repeat("a", maxErrorBody-1) + "é" + strings.Repeat("b", 10)

	got := summarize([]byte(body), http.StatusBadGateway)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxErrorBody-1)+"...", got)
}

func TestSummarize_ShortBodyUnchanged(t *testing.T) {
	assert.Equal(t, "héllo", summarize([]byte("  héllo \n"), http.StatusBadGateway))
}

func TestComplete_MalformedJSON(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, `{"choices": [`, nil)

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)
	assert.ErrorIs(t, err, chattypes.ErrDecode)
}

func TestComplete_MissingChoices(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil)

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)
	assert.ErrorIs(t, err, chattypes.ErrDecode)
}

func TestComplete_WrongShape(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, `{"choices":"nope"}`, nil)

	_, err := New().Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)
	assert.ErrorIs(t, err, chattypes.ErrDecode)
}

func TestComplete_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New().Complete(context.Background(), chattypes.Config{URL: url}, nil)
	assert.ErrorIs(t, err, chattypes.ErrNetwork)
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := New(WithTimeout(50*time.Millisecond)).Complete(context.Background(), chattypes.Config{URL: server.URL}, nil)
	assert.ErrorIs(t, err, chattypes.ErrNetwork)
}

func TestRemoteError_Message(t *testing.T) {
	err := &chattypes.RemoteError{StatusCode: 429, Message: "slow down", Type: "rate_limit"}
	assert.Equal(t, "remote error (status 429, rate_limit): slow down", err.Error())

	bare := &chattypes.RemoteError{StatusCode: 500}
	assert.Equal(t, "remote error (status 500): request failed", bare.Error())
}
