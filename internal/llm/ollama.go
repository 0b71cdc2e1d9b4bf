package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Ollama talks to a local Ollama server's /api/chat endpoint in hard JSON
// mode. Local models occasionally emit prose or fenced output anyway, so a
// reply that does not start with a brace gets exactly one retry before the
// balanced-object extractor gives up.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(cfg Config) *Ollama {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}
	return &Ollama{
		baseURL: strings.TrimRight(base, "/"),
		model:   model,
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Options  map[string]any `json:"options"`
	Format   string         `json:"format"`
	Stream   bool           `json:"stream"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Response string `json:"response"`
}

func (o *Ollama) ChatJSON(ctx context.Context, messages []Message) (map[string]any, error) {
	req := ollamaRequest{
		Model:    o.model,
		Messages: messages,
		Options: map[string]any{
			"temperature":    0.1,
			"num_ctx":        8192,
			"top_p":          0.9,
			"repeat_penalty": 1.1,
			"mirostat":       0,
			"num_predict":    2048,
		},
		Format: "json",
		Stream: false,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		content, err := o.post(ctx, body)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(strings.TrimSpace(content), "{") {
			lastErr = fmt.Errorf("response does not start with brace: %.200s", content)
			continue
		}
		return ExtractJSON(content)
	}
	return nil, lastErr
}

func (o *Ollama) post(ctx context.Context, body []byte) (string, error) {
	url := o.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		if isConnectionRefused(err) {
			return "", fmt.Errorf(
				"could not connect to Ollama at %s; make sure Ollama is installed and running (https://ollama.ai), then run: ollama pull %s",
				url, o.model)
		}
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %s: %.200s", resp.Status, raw)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Some builds return the object bare; hand the text to the extractor.
		return strings.TrimSpace(string(raw)), nil
	}
	if parsed.Message.Content != "" {
		return strings.TrimSpace(parsed.Message.Content), nil
	}
	if parsed.Response != "" {
		return strings.TrimSpace(parsed.Response), nil
	}
	return "", fmt.Errorf("unexpected ollama response shape: %.200s", raw)
}

func isConnectionRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// ExtractJSON pulls the first balanced top-level JSON object out of a
// reply, tolerating markdown code fences around it.
func ExtractJSON(text string) (map[string]any, error) {
	t := strings.TrimSpace(text)

	if strings.HasPrefix(t, "```") {
		t = strings.Trim(t, "`")
		if nl := strings.IndexByte(t, '\n'); nl != -1 {
			t = t[nl+1:]
		}
	}

	start, depth, end := -1, 0, -1
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if start == -1 || end == -1 {
		return nil, fmt.Errorf("no top-level JSON object found in response: %.200s", t)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(t[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("parsing JSON from response: %w", err)
	}
	return out, nil
}
