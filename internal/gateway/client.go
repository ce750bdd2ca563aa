// Package gateway talks to the translation relay.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"parrot/internal/domain"
)

const maxResponseBytes = 1 << 20

var (
	ErrEmptyText     = domain.ErrEmptyText
	ErrInvalidTarget = domain.ErrInvalidTarget
)

// RequestError is a translation the relay rejected or could not complete.
type RequestError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *RequestError) Error() string {
	return e.Message
}

type response struct {
	Result   string `json:"result"`
	Detected string `json:"detected"`
	Error    string `json:"error"`
	Details  string `json:"details"`
}

// Client performs one GET per translation against {base}/api/translate.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		log:     log.Named("gateway"),
	}
}

// Translate never retries. from is omitted from the request when it is
// empty or auto.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.TranslationResult{}, ErrEmptyText
	}
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" || targetLang == "auto" {
		return domain.TranslationResult{}, ErrInvalidTarget
	}

	query := url.Values{}
	query.Set("q", text)
	query.Set("to", targetLang)
	if from := strings.TrimSpace(sourceLang); from != "" && from != "auto" {
		query.Set("from", from)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/translate?"+query.Encode(), nil)
	if err != nil {
		return domain.TranslationResult{}, fmt.Errorf("build translation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.TranslationResult{}, fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.TranslationResult{}, fmt.Errorf("read translation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.TranslationResult{}, c.statusError(resp.StatusCode, body)
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.TranslationResult{}, fmt.Errorf("decode translation response: %w", err)
	}
	if payload.Result == "" {
		message := payload.Error
		if message == "" {
			message = "no result in translation response"
		}
		return domain.TranslationResult{}, &RequestError{StatusCode: resp.StatusCode, Message: message, Details: payload.Details}
	}

	return domain.TranslationResult{TranslatedText: payload.Result, DetectedSourceLang: payload.Detected}, nil
}

func (c *Client) statusError(status int, body []byte) error {
	reqErr := &RequestError{
		StatusCode: status,
		Message:    fmt.Sprintf("translation request failed: %d", status),
	}
	var payload response
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		reqErr.Message = payload.Error
		reqErr.Details = payload.Details
	}
	c.log.Debug("relay rejected translation",
		zap.Int("status", status),
		zap.String("error", reqErr.Message),
		zap.String("details", reqErr.Details),
	)
	return reqErr
}

// IsRequestError reports whether err carries a relay response.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}
