// Package extract turns meeting-minute photos, chat transcripts and goals into
// task suggestions through the Gemini generateContent endpoint.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-2.5-flash"

	// chatWindow is how many trailing chat lines are sent for analysis.
	chatWindow = 50
)

// Client calls the model. Zero fields fall back to the defaults.
type Client struct {
	Endpoint   string
	Model      string
	HTTPClient *http.Client
}

// ChatLine is one message of the transcript sent for analysis.
type ChatLine struct {
	Timestamp string
	User      string
	Message   string
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractFromImage asks the model for action items in a photo of meeting minutes.
func (c *Client) ExtractFromImage(ctx context.Context, apiKey string, img []byte, mimeType string, users []string) ([]Suggestion, error) {
	if len(img) == 0 {
		return nil, ErrEmptyInput
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []part{
		{Text: imagePrompt(users)},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(img)}},
	}
	return c.suggest(ctx, apiKey, parts)
}

// ExtractFromChat asks the model for promises made in the last chat lines.
func (c *Client) ExtractFromChat(ctx context.Context, apiKey string, messages []ChatLine, users []string) ([]Suggestion, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyInput
	}
	if len(messages) > chatWindow {
		messages = messages[len(messages)-chatWindow:]
	}
	var transcript strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&transcript, "[%s] %s: %s\n", m.Timestamp, m.User, m.Message)
	}
	return c.suggest(ctx, apiKey, []part{{Text: chatPrompt(users, transcript.String())}})
}

// GeneratePlan asks the model to break a goal into assignable tasks.
func (c *Client) GeneratePlan(ctx context.Context, apiKey, goal string, users []string) ([]Suggestion, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrEmptyInput
	}
	return c.suggest(ctx, apiKey, []part{{Text: planPrompt(users, goal)}})
}

func (c *Client) suggest(ctx context.Context, apiKey string, parts []part) ([]Suggestion, error) {
	text, err := c.generate(ctx, apiKey, parts)
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text)
}

// generate performs one generateContent call and returns the first candidate text.
func (c *Client) generate(ctx context.Context, apiKey string, parts []part) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrNoAPIKey
	}
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url(apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || decodeErr != nil || len(out.Candidates) == 0 ||
		len(out.Candidates[0].Content.Parts) == 0 {
		msg := string(raw)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) url(apiKey string) string {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(endpoint, "/"), model, url.QueryEscape(apiKey))
}
