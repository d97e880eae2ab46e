package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	deeplProURL  = "https://api.deepl.com"
	deeplFreeURL = "https://api-free.deepl.com"
)

// DeepL calls the DeepL v2 translate endpoint.
type DeepL struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// DeepLEndpoint picks the API host. Free-tier keys end in ":fx".
func DeepLEndpoint(apiKey string, useFreeTier bool) string {
	if useFreeTier || strings.HasSuffix(apiKey, ":fx") {
		return deeplFreeURL
	}
	return deeplProURL
}

// NewDeepL returns a DeepL backend. baseURL overrides the endpoint when set.
func NewDeepL(apiKey string, useFreeTier bool, baseURL string, client *http.Client) (*DeepL, error) {
	if apiKey == "" {
		return nil, errors.New("DeepL API key is required")
	}
	if baseURL == "" {
		baseURL = DeepLEndpoint(apiKey, useFreeTier)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DeepL{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}, nil
}

// Name implements Backend.
func (d *DeepL) Name() string { return "deepl" }

// BaseURL is the endpoint requests are sent to.
func (d *DeepL) BaseURL() string { return d.baseURL }

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

// Translate implements Backend.
func (d *DeepL) Translate(ctx context.Context, text, targetCode string) (string, error) {
	body, err := json.Marshal(deeplRequest{Text: []string{text}, TargetLang: targetCode})
	if err != nil {
		return "", fmt.Errorf("could not marshal deepl request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v2/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not build deepl request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("could not read deepl response: %w", err)
	}
	var out deeplResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		msg := out.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("deepl returned %d: %s", resp.StatusCode, msg)
	}
	if len(out.Translations) == 0 {
		return "", errors.New("deepl returned no translations")
	}
	return out.Translations[0].Text, nil
}
