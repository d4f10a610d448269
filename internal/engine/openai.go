package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// openAIEngine talks to an OpenAI-compatible /v1/completions server such as
// llama.cpp's server. Beam search is not part of that API, so decoding maps
// to greedy sampling (temperature 0, top_k 1) plus the repetition penalty.
type openAIEngine struct {
	baseURL    string
	model      string
	apiKey     string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewOpenAI constructs a completions-server engine.
func NewOpenAI(spec Spec) Engine {
	return &openAIEngine{
		baseURL:    strings.TrimRight(spec.Endpoint, "/"),
		model:      spec.Model,
		apiKey:     spec.APIKey,
		reqTimeout: spec.RequestTimeout,
		httpClient: newHTTPClient(spec.ConnectTimeout),
	}
}

// openAICompletionRequest represents the payload for /v1/completions.
type openAICompletionRequest struct {
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature"`
	TopK        int     `json:"top_k,omitempty"`
	Seed        int     `json:"seed,omitempty"`
	Stream      bool    `json:"stream"`
	// RepeatPenalty is a llama.cpp extension; servers without it ignore the key.
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

type openAIStreamChoice struct {
	Text  string `json:"text"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type openAIStreamResponse struct {
	Choices []openAIStreamChoice `json:"choices"`
}

func (e *openAIEngine) Generate(ctx context.Context, text string, d Decoding) ([]Generation, error) {
	ctx, cancel := withTimeout(ctx, e.reqTimeout)
	defer cancel()

	payload := openAICompletionRequest{
		Model:         e.model,
		Prompt:        text,
		MaxTokens:     d.MaxNewTokens,
		Seed:          d.Seed,
		Stream:        true,
		RepeatPenalty: d.RepetitionPenalty,
	}
	if d.DoSample {
		payload.Temperature = 0.8
	} else {
		payload.TopK = 1
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, doErr(ctx, "openai", err)
	}
	defer resp.Body.Close()
	if err := checkStatus("openai", resp); err != nil {
		return nil, err
	}

	// Servers emit SSE lines prefixed with "data: "; some stream raw JSON objects instead.
	var b strings.Builder
	r := bufio.NewReader(resp.Body)
	for {
		line, rerr := r.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			data := line
			if strings.HasPrefix(strings.ToLower(line), "data:") {
				data = strings.TrimSpace(line[len("data:"):])
			}
			if data == "[DONE]" {
				break
			}
			var msg openAIStreamResponse
			if err := json.Unmarshal([]byte(data), &msg); err == nil && len(msg.Choices) > 0 {
				b.WriteString(msg.Choices[0].Text)
				b.WriteString(msg.Choices[0].Delta.Content)
			} else {
				var generic map[string]any
				if err := json.Unmarshal([]byte(data), &generic); err == nil {
					if tok, ok := generic["content"].(string); ok {
						b.WriteString(tok)
					}
				} else {
					log.Debug().Str("engine", "openai").Str("line", line).Msg("unknown stream line")
				}
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return nil, doErr(ctx, "openai", rerr)
		}
	}
	return []Generation{{GeneratedText: b.String()}}, nil
}
