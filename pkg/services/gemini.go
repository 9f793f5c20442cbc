package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"Zelvix/pkg/config"
)

// Generator turns a prompt into reply text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrGeminiDisabled = errors.New("gemini is disabled via config")
	// ErrNoCandidate means the API answered but carried no usable text.
	ErrNoCandidate = errors.New("gemini returned no candidate text")
)

type GeminiService struct {
	apiKey     string
	model      string
	apiVersion string
	baseURL    string
	enabled    bool
	client     *http.Client
}

func NewGeminiService(cfg *config.Config) *GeminiService {
	return &GeminiService{
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		apiVersion: cfg.GeminiAPIVersion,
		baseURL:    strings.TrimRight(cfg.GeminiBaseURL, "/"),
		enabled:    cfg.IsGeminiEnabled,
		client:     http.DefaultClient,
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (s *GeminiService) WithHTTPClient(c *http.Client) *GeminiService {
	s.client = c
	return s
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends a single-turn prompt and returns the first candidate's
// first text part. One round trip, no retry.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if !s.enabled {
		log.Printf("[gemini] disabled via config (IsGeminiEnabled=false)")
		return "", ErrGeminiDisabled
	}
	if strings.TrimSpace(s.apiKey) == "" {
		return "", errors.New("GEMINI_API_KEY is not set")
	}

	bodyBytes, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		s.baseURL, s.apiVersion, url.PathEscape(s.model), url.QueryEscape(s.apiKey))
	log.Printf("[gemini] POST %s/%s/models/%s:generateContent", s.baseURL, s.apiVersion, s.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidate
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrNoCandidate
	}
	return text, nil
}
