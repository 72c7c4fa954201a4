package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *anthropicClient {
	return &anthropicClient{httpClient: resty.New(), url: serverURL}
}

func messagesResponse(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"content": []map[string]string{{"text": text}},
	})
	return string(body)
}

func TestAnalyzeInventoryParsesPrefilledResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// The request must carry the assistant prefill as the last message.
		require.NotEmpty(t, req.Messages)
		assert.Equal(t, "assistant", req.Messages[len(req.Messages)-1].Role)
		assert.Equal(t, "{", req.Messages[len(req.Messages)-1].Content)

		// The model continues after the prefilled opening brace.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(messagesResponse(`"summary":"Stock is healthy.","alerts":[],"recommendations":["Nothing to do."]}`)))
	}))
	defer server.Close()

	insight, err := newTestClient(server.URL).AnalyzeInventory(context.Background(), map[string]string{"items": "none"})
	require.NoError(t, err)
	assert.Equal(t, "Stock is healthy.", insight.Summary)
	assert.Empty(t, insight.Alerts)
	assert.Equal(t, []string{"Nothing to do."}, insight.Recommendations)
}

func TestAnalyzeInventoryRejectsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(messagesResponse(`"summary": not json at all`)))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AnalyzeInventory(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal ai response")
}

func TestAnalyzeInventoryRejectsEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AnalyzeInventory(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestAnalyzeInventoryRejectsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AnalyzeInventory(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic api error")
}

func TestAnalyzeInventoryRejectsMissingSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(messagesResponse(`"alerts":[],"recommendations":[]}`)))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AnalyzeInventory(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing summary")
}
