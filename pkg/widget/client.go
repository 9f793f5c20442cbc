package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"Zelvix/models"
)

// UploadResult is the relay's answer to an upload.
type UploadResult struct {
	Preview string `json:"preview"`
	FileURL string `json:"fileUrl"`
}

// Relay is the backend the session talks to.
type Relay interface {
	Chat(ctx context.Context, message string) (string, error)
	Upload(ctx context.Context, fileName string, body io.Reader) (UploadResult, error)
}

// SessionStarter is implemented by relays that can register the display
// name with the backend. Sessions call it when present.
type SessionStarter interface {
	StartSession(ctx context.Context, name string) error
}

// Client talks to the relay over HTTP.
type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.RWMutex
	endpoints struct{ chat, upload, session string }
	token     string
}

// NewClient targets baseURL (e.g. http://localhost:5000). A nil httpClient
// gets a 90 second timeout, longer than the relay's upstream deadline.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
	c.endpoints.chat = "/chat"
	c.endpoints.upload = "/upload"
	c.endpoints.session = "/session"
	return c
}

// FetchConfig loads /chatConfig.json and switches to the endpoints it names.
func (c *Client) FetchConfig(ctx context.Context) (*models.WidgetConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chatConfig.json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch config: status %d", resp.StatusCode)
	}
	cfg := &models.WidgetConfig{}
	if err := json.NewDecoder(resp.Body).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.UseEndpoints(cfg)
	return cfg, nil
}

// UseEndpoints adopts the non-empty endpoint paths of cfg.
func (c *Client) UseEndpoints(cfg *models.WidgetConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := cfg.APIEndpoints.Chat; p != "" {
		c.endpoints.chat = p
	}
	if p := cfg.APIEndpoints.Upload; p != "" {
		c.endpoints.upload = p
	}
	if p := cfg.APIEndpoints.Session; p != "" {
		c.endpoints.session = p
	}
}

// Token is the current session token, "" before StartSession.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) endpoint(pick func() string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolve(pick())
}

func (c *Client) do(req *http.Request, out any) (int, error) {
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) postJSON(ctx context.Context, url string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Chat sends one message. The relay's fallback reply is returned as text
// even when it comes with an error status; only transport or decoding
// failures are errors.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	url := c.endpoint(func() string { return c.endpoints.chat })
	status, err := c.postJSON(ctx, url, map[string]string{"message": message}, &out)
	if err != nil {
		return "", err
	}
	if out.Reply == "" && status >= 300 {
		return "", fmt.Errorf("chat: status %d", status)
	}
	return out.Reply, nil
}

// Upload posts body as the "file" form field.
func (c *Client) Upload(ctx context.Context, fileName string, body io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(fw, body); err != nil {
		return UploadResult{}, fmt.Errorf("read %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, err
	}

	url := c.endpoint(func() string { return c.endpoints.upload })
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	status, err := c.do(req, &out)
	if err != nil {
		return UploadResult{}, err
	}
	if out.Preview == "" && status >= 300 {
		return UploadResult{}, fmt.Errorf("upload: status %d", status)
	}
	return out, nil
}

// StartSession registers name with the relay and keeps the returned token
// for later requests.
func (c *Client) StartSession(ctx context.Context, name string) error {
	var out struct {
		SessionID string `json:"sessionId"`
		Token     string `json:"token"`
		Error     string `json:"error"`
	}
	url := c.endpoint(func() string { return c.endpoints.session })
	status, err := c.postJSON(ctx, url, map[string]string{"name": name}, &out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		if out.Error != "" {
			return errors.New(out.Error)
		}
		return fmt.Errorf("session: status %d", status)
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}
