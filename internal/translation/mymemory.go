package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultMyMemoryEndpoint is the public MyMemory translation endpoint
const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

// maxBodyBytes bounds how much of a response body is read
const maxBodyBytes = 1 << 20

// MyMemoryClient calls the MyMemory GET endpoint
type MyMemoryClient struct {
	endpoint string
	email    string
	client   *http.Client
}

type myMemoryResponse struct {
	ResponseData *struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.RawMessage `json:"responseStatus"`
}

// NewMyMemoryClient creates a client for endpoint. An empty endpoint uses the
// public service; email, when set, is sent as the "de" contact parameter.
func NewMyMemoryClient(endpoint, email string, timeout time.Duration) *MyMemoryClient {
	if endpoint == "" {
		endpoint = DefaultMyMemoryEndpoint
	}
	return &MyMemoryClient{
		endpoint: endpoint,
		email:    email,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (c *MyMemoryClient) Name() string {
	return ProviderMyMemory
}

// RequestURL builds the GET url for text
func (c *MyMemoryClient) RequestURL(text string) string {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", LangPair)
	if c.email != "" {
		params.Set("de", c.email)
	}

	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + params.Encode()
}

// Translate issues one GET request and extracts responseData.translatedText
func (c *MyMemoryClient) Translate(ctx context.Context, text string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(text), nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %v", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrRemoteUnavailable, err)
	}

	var payload myMemoryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemoteMalformed, err)
	}

	// MyMemory reports quota and validation problems in the body with a 200
	if status, ok := parseStatus(payload.ResponseStatus); ok && (status < 200 || status > 299) {
		return "", fmt.Errorf("%w: response status %d", ErrRemoteUnavailable, status)
	}

	if payload.ResponseData == nil {
		return "", ErrRemoteMalformed
	}
	translated := strings.TrimSpace(payload.ResponseData.TranslatedText)
	if translated == "" {
		return "", ErrRemoteMalformed
	}

	return translated, nil
}

// parseStatus accepts responseStatus as a number or a quoted number
func parseStatus(raw json.RawMessage) (int, bool) {
	value := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if value == "" || value == "null" {
		return 0, false
	}
	status, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return status, true
}
