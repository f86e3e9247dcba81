package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	classifierModel "github.com/dapplion/review-royale/internal/classifier/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("sk-test", srv.URL, "gpt-4o-mini", 5*time.Second, zap.NewNop().Sugar())
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestClassifyBatch(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		reply := `{"results":[{"index":0,"category":"logic","quality_score":7},{"index":1,"category":"nit","quality_score":2}]}`
		require.NoError(t, json.NewEncoder(w).Encode(chatReply(reply)))
	}))

	verdicts, err := client.ClassifyBatch(context.Background(),
		[]string{"this drops the error", "nit: typo"})
	require.NoError(t, err)
	require.Len(t, verdicts, 2)
	assert.Equal(t, classifierModel.Classification{Index: 0, Category: "logic", QualityScore: 7}, verdicts[0])

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[1].Content, "[0] this drops the error")
	assert.Contains(t, captured.Messages[1].Content, "[1] nit: typo")
}

func TestClassifyBatch_TruncatesLongComments(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		require.NoError(t, json.NewEncoder(w).Encode(chatReply(`{"results":[]}`)))
	}))

	long := strings.Repeat("x", 800)
	_, err := client.ClassifyBatch(context.Background(), []string{long})
	require.NoError(t, err)

	assert.Contains(t, captured.Messages[1].Content, strings.Repeat("x", maxCommentLength)+"...")
	assert.NotContains(t, captured.Messages[1].Content, strings.Repeat("x", maxCommentLength+1))
}

func TestClassifyBatch_TruncatesOnRuneBoundary(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		require.NoError(t, json.NewEncoder(w).Encode(chatReply(`{"results":[]}`)))
	}))

	// Two-byte runes straddle the cutoff; the cut must not split one.
	long := strings.Repeat("ы", 400)
	_, err := client.ClassifyBatch(context.Background(), []string{long})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(captured.Messages[1].Content))
	assert.Contains(t, captured.Messages[1].Content, "ы...")
}

func TestClassifyBatch_NoAPIKey(t *testing.T) {
	client := New("", "http://unused", "gpt-4o-mini", time.Second, zap.NewNop().Sugar())

	_, err := client.ClassifyBatch(context.Background(), []string{"body"})
	assert.ErrorIs(t, err, classifierModel.ErrBackendDisabled)
}

func TestClassifyBatch_UpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))

	_, err := client.ClassifyBatch(context.Background(), []string{"body"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 429")
}

func TestClassifyBatch_MalformedVerdicts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(chatReply("not json at all")))
	}))

	_, err := client.ClassifyBatch(context.Background(), []string{"body"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse verdicts")
}
