package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"competitor_backend/internal/feature/impact/usecase"
	updentity "competitor_backend/internal/feature/updates/domain/entity"
)

// fakeGemini はgenerateContentエンドポイントを模したテストサーバーです。
func fakeGemini(t *testing.T, reply string, status int, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "boom", "status": "INVALID_ARGUMENT"}}`))
			return
		}
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": reply}},
				},
				"finishReason": "STOP",
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)

	assert.Error(t, err)
}

func TestClient_Generate(t *testing.T) {
	var captured map[string]any
	srv := fakeGemini(t, `{"executive_summary": "ok"}`, http.StatusOK, &captured)
	c := newTestClient(t, srv)

	got, err := c.Generate(context.Background(), usecase.PromptPayload{System: "be terse", Prompt: "analyze Acme"})

	require.NoError(t, err)
	assert.Equal(t, `{"executive_summary": "ok"}`, got)
	assert.Contains(t, captured, "systemInstruction")
	gen, ok := captured["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", gen["responseMimeType"])
}

func TestClient_Generate_Errors(t *testing.T) {
	t.Run("rejected request", func(t *testing.T) {
		c := newTestClient(t, fakeGemini(t, "", http.StatusBadRequest, nil))

		_, err := c.Generate(context.Background(), usecase.PromptPayload{Prompt: "x"})

		assert.ErrorContains(t, err, "gemini API request failed")
	})

	t.Run("empty text", func(t *testing.T) {
		c := newTestClient(t, fakeGemini(t, "  ", http.StatusOK, nil))

		_, err := c.Generate(context.Background(), usecase.PromptPayload{Prompt: "x"})

		assert.ErrorContains(t, err, "empty response")
	})
}

func TestClient_JudgeSentiment(t *testing.T) {
	c := newTestClient(t, fakeGemini(t, `{"sentiment": "negative", "score": -0.7}`, http.StatusOK, nil))

	label, score, err := c.JudgeSentiment(context.Background(), "Acme faces lawsuit", "")

	require.NoError(t, err)
	assert.Equal(t, updentity.SentimentNegative, label)
	assert.InDelta(t, -0.7, score, 1e-9)
}

func TestClient_SummarizeArticle(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, fakeGemini(t, `{"summary": " Acme closed a $10M round. "}`, http.StatusOK, &captured))

	got, err := c.SummarizeArticle(context.Background(), "Acme raises $10M", "Acme raised $10M from Foo.", 40)

	require.NoError(t, err)
	assert.Equal(t, "Acme closed a $10M round.", got)
	raw, err := json.Marshal(captured["contents"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "40 words or less")
	assert.Contains(t, string(raw), "Acme raised $10M from Foo.")
}

func TestParseSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "plain json", text: `{"summary": "Acme expands."}`, want: "Acme expands."},
		{name: "fenced json", text: "```json\n{\"summary\": \"Acme expands.\"}\n```", want: "Acme expands."},
		{name: "blank summary", text: `{"summary": "  "}`, wantErr: true},
		{name: "not json", text: "Acme expands.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseSummary(tt.text)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLabel updentity.Sentiment
		wantScore float64
		wantErr   bool
	}{
		{name: "positive", text: `{"sentiment":"Positive","score":0.8}`, wantLabel: updentity.SentimentPositive, wantScore: 0.8},
		{name: "fenced", text: "```json\n{\"sentiment\":\"neutral\",\"score\":0.3}\n```", wantLabel: updentity.SentimentNeutral, wantScore: 0},
		{name: "clamped", text: `{"sentiment":"negative","score":-3}`, wantLabel: updentity.SentimentNegative, wantScore: -1},
		{name: "sign follows label", text: `{"sentiment":"positive","score":-0.2}`, wantLabel: updentity.SentimentPositive, wantScore: 0.5},
		{name: "missing score", text: `{"sentiment":"negative"}`, wantLabel: updentity.SentimentNegative, wantScore: -0.5},
		{name: "unknown label", text: `{"sentiment":"mixed","score":0}`, wantErr: true},
		{name: "no json", text: "positive", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, score, err := parseSentiment(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, label)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
		})
	}
}
