package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,/9j/", dataURL([]byte{0xff, 0xd8, 0xff}))
}

func TestContentParts_SkipsEmptyFrames(t *testing.T) {
	parts := contentParts([][]byte{{1}, nil, {2}, {}})
	require.Len(t, parts, 3)
	require.NotNil(t, parts[0].OfText)
	assert.Equal(t, framePrompt, parts[0].OfText.Text)
	require.NotNil(t, parts[1].OfImageURL)
	assert.Equal(t, "low", parts[1].OfImageURL.ImageURL.Detail)
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "A cup. Steam rises.", cleanDescription("  A cup.\n\n Steam   rises. "))
}

func TestDescribe_NoFrames(t *testing.T) {
	a := New(Options{APIKey: "k"})
	_, err := a.Describe(context.Background(), [][]byte{nil})
	require.ErrorIs(t, err, ErrNoFrames)
}

func TestDescribe_RoundTrip(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" Steam rises\nfrom a cup. "}}]}`))
	}))
	defer srv.Close()

	a := New(Options{
		APIKey:        "k",
		BaseURL:       srv.URL,
		Model:         "m",
		Timeout:       5 * time.Second,
		ClientOptions: []option.RequestOption{option.WithMaxRetries(0)},
	})
	desc, err := a.Describe(context.Background(), [][]byte{{0xff, 0xd8}, {0xff, 0xd9}})
	require.NoError(t, err)
	assert.Equal(t, "Steam rises from a cup.", desc)

	assert.Equal(t, "m", got["model"])
	assert.EqualValues(t, maxTokens, got["max_tokens"])
	msgs := got["messages"].([]any)
	content := msgs[0].(map[string]any)["content"].([]any)
	assert.Len(t, content, 3)
}

func TestDescribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(Options{
		APIKey:        "k",
		BaseURL:       srv.URL,
		ClientOptions: []option.RequestOption{option.WithMaxRetries(0)},
	})
	_, err := a.Describe(context.Background(), [][]byte{{1}})
	require.Error(t, err)
}
