package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Zelvix/pkg/config"
)

func testGeminiConfig(baseURL string) *config.Config {
	return &config.Config{
		GeminiAPIKey:     "test-key",
		GeminiModel:      "gemini-1.5-flash",
		GeminiAPIVersion: "v1",
		GeminiBaseURL:    baseURL,
		IsGeminiEnabled:  true,
	}
}

func TestGeminiGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"We open at 9."},{"text":"ignored"}]}},{"content":{"parts":[{"text":"second"}]}}]}`)
	}))
	defer srv.Close()

	svc := NewGeminiService(testGeminiConfig(srv.URL + "/")).WithHTTPClient(srv.Client())
	text, err := svc.Generate(context.Background(), "Q: hours\nA: 9\n\nUser: hours?\nAI:")
	require.NoError(t, err)

	assert.Equal(t, "We open at 9.", text)
	assert.Equal(t, "/v1/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "Q: hours\nA: 9\n\nUser: hours?\nAI:", gotBody.Contents[0].Parts[0].Text)
}

func TestGeminiGenerateNoCandidate(t *testing.T) {
	for name, body := range map[string]string{
		"no candidates": `{"candidates":[]}`,
		"no parts":      `{"candidates":[{"content":{"parts":[]}}]}`,
		"empty text":    `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			_, err := NewGeminiService(testGeminiConfig(srv.URL)).Generate(context.Background(), "p")
			assert.True(t, errors.Is(err, ErrNoCandidate), "got %v", err)
		})
	}
}

func TestGeminiGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewGeminiService(testGeminiConfig(srv.URL)).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "API key not valid")
	assert.False(t, errors.Is(err, ErrNoCandidate))
}

func TestGeminiGenerateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops`)
	}))
	defer srv.Close()

	_, err := NewGeminiService(testGeminiConfig(srv.URL)).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "decode response")
}

func TestGeminiGenerateRespectsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewGeminiService(testGeminiConfig(srv.URL)).Generate(ctx, "p")
	assert.Error(t, err)
}

func TestGeminiDisabledAndMissingKey(t *testing.T) {
	cfg := testGeminiConfig("http://127.0.0.1:0")
	cfg.IsGeminiEnabled = false
	_, err := NewGeminiService(cfg).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrGeminiDisabled)

	cfg = testGeminiConfig("http://127.0.0.1:0")
	cfg.GeminiAPIKey = " "
	_, err = NewGeminiService(cfg).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}
