package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

const maxProviderBody = 1 << 20

// GoogleProvider uses the public translate endpoint behind translate.google.com.
type GoogleProvider struct {
	baseURL string
	client  *http.Client
}

func NewGoogleProvider(baseURL string, client *http.Client) *GoogleProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleProvider{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Translate(ctx context.Context, req Request) (Result, error) {
	from := req.From
	if from == "" {
		from = "auto"
	}
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", req.To)
	params.Set("dt", "t")
	params.Set("q", req.Text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/translate_a/single?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build google request: %w", err)
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return Result{}, fmt.Errorf("read google response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("google responded %d", resp.StatusCode)
	}
	return parseGoogleResponse(body, req.From)
}

// parseGoogleResponse reads the nested array format
// [[["translated","original",...],...],null,"detected",...].
func parseGoogleResponse(body []byte, from string) (Result, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, fmt.Errorf("decode google response: %w", err)
	}
	if len(payload) == 0 {
		return Result{}, errEmptyTranslation
	}

	sentences, _ := payload[0].([]any)
	var text strings.Builder
	for _, sentence := range sentences {
		parts, ok := sentence.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if chunk, ok := parts[0].(string); ok {
			text.WriteString(chunk)
		}
	}
	if text.Len() == 0 {
		return Result{}, errEmptyTranslation
	}

	detected := from
	if len(payload) > 2 {
		if code, ok := payload[2].(string); ok && code != "" {
			detected = code
		}
	}
	return Result{Text: text.String(), Detected: detected}, nil
}
