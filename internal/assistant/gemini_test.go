package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGeminiClient("test-key", "test-model")
	c.baseURL = srv.URL
	c.httpClient = srv.Client()
	return c
}

func candidateResponse(text string) any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
}

func TestConverse(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(candidateResponse("How long have you had the headache?"))
	})

	reply, err := c.Converse(context.Background(), "I have a headache", "")
	require.NoError(t, err)
	assert.Equal(t, "How long have you had the headache?", reply)

	assert.Equal(t, "/models/test-model:generateContent", gotPath)
	require.Len(t, gotBody.Contents, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "I have a headache")
	assert.Contains(t, prompt, ReportMarker, "prompt must instruct the end trigger")
	require.NotNil(t, gotBody.GenerationConfig.Temperature)
	assert.InDelta(t, 0.7, *gotBody.GenerationConfig.Temperature, 0.001)
}

func TestExtractClinicalSummary(t *testing.T) {
	var gotBody generateRequest

	summaryJSON := `{"condition":"Flu-like symptoms","confidence":82,"symptoms_extracted":["fever","headache"],"advice":"Rest and hydrate.","summary":"Patient reports fever and headache for two days."}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(candidateResponse(summaryJSON))
	})

	summary, err := c.ExtractClinicalSummary(context.Background(), "User: fever\nAssistant: noted")
	require.NoError(t, err)

	assert.Equal(t, "Flu-like symptoms", summary.Condition)
	assert.InDelta(t, 82, summary.Confidence, 0.001)
	assert.Equal(t, []string{"fever", "headache"}, summary.SymptomsExtracted)
	assert.Equal(t, "Rest and hydrate.", summary.Advice)

	assert.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMimeType)
	assert.True(t, strings.Contains(string(gotBody.GenerationConfig.ResponseSchema), "symptoms_extracted"))
}

func TestGenerateErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	_, err := c.Converse(context.Background(), "hello", "")
	assert.ErrorContains(t, err, "429")

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})
	_, err = c.Converse(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrNoCandidates)
}
