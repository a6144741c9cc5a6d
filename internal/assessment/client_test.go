package assessment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	logger := zap.NewNop()

	_, err := NewClient("", time.Second, logger)
	assert.Error(t, err)

	client, err := NewClient("http://localhost:8000", 0, logger)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)

	client, err = NewClient("http://localhost:8000", 5*time.Second, logger)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestClient_StartConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/start-conversation", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		json.NewEncoder(w).Encode(StartConversationResponse{
			SessionID: "engine-session-1",
			Response:  "Hello! Let's begin your assessment.",
			ConversationHistory: []ConversationEntry{
				{Role: "assistant", Content: "Hello! Let's begin your assessment."},
			},
			CollectedData: CollectedData{},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.StartConversation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "engine-session-1", resp.SessionID)
	assert.Equal(t, "Hello! Let's begin your assessment.", resp.Response)
	require.Len(t, resp.ConversationHistory, 1)
}

func TestClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "I am 45 years old", req.Message)
		assert.Equal(t, "engine-session-1", req.SessionID)

		sessionID := req.SessionID
		json.NewEncoder(w).Encode(ChatResponse{
			Response:             "Got it. What is your height?",
			CollectedData:        CollectedData{"age": float64(45)},
			CompletionPercentage: 12,
			IsComplete:           false,
			ConversationHistory: append(req.ConversationHistory,
				ConversationEntry{Role: "user", Content: req.Message},
				ConversationEntry{Role: "assistant", Content: "Got it. What is your height?"},
			),
			SessionID: &sessionID,
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), ChatRequest{
		Message:   "I am 45 years old",
		SessionID: "engine-session-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Got it. What is your height?", resp.Response)
	assert.Equal(t, float64(45), resp.CollectedData["age"])
	assert.False(t, resp.IsComplete)
	assert.Len(t, resp.ConversationHistory, 2)
}

func TestClient_CompleteRecommendation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recommendation/complete", r.URL.Path)

		var req CompleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Jane Doe", req.CollectedData["name"])

		json.NewEncoder(w).Encode(CompleteRecommendationResponse{
			Eligibility: EligibilityResponse{
				EligibilityStatus: "eligible",
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	resp, err := client.CompleteRecommendation(context.Background(), CompleteRequest{
		CollectedData: CollectedData{"name": "Jane Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, "eligible", resp.Eligibility.EligibilityStatus)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = client.StartConversation(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.StartConversation(ctx)
	assert.Error(t, err)
}

func TestClient_UnreachableEngine(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", 200*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	_, err = client.StartConversation(context.Background())
	assert.Error(t, err)
}
