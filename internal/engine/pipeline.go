package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// pipelineEngine posts to a text-generation pipeline server that accepts
// {"inputs": text, "parameters": {...}} and answers [{"generated_text": ...}].
type pipelineEngine struct {
	endpoint   string
	model      string
	task       Task
	apiKey     string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewPipeline constructs a pipeline engine for spec.
func NewPipeline(spec Spec) Engine {
	return &pipelineEngine{
		endpoint:   strings.TrimRight(spec.Endpoint, "/"),
		model:      spec.Model,
		task:       spec.Task,
		apiKey:     spec.APIKey,
		reqTimeout: spec.RequestTimeout,
		httpClient: newHTTPClient(spec.ConnectTimeout),
	}
}

type pipelineRequest struct {
	Model      string          `json:"model,omitempty"`
	Task       Task            `json:"task,omitempty"`
	Inputs     string          `json:"inputs"`
	Parameters Decoding        `json:"parameters"`
	Options    pipelineOptions `json:"options"`
}

type pipelineOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

func (e *pipelineEngine) Generate(ctx context.Context, text string, d Decoding) ([]Generation, error) {
	ctx, cancel := withTimeout(ctx, e.reqTimeout)
	defer cancel()

	body, err := json.Marshal(pipelineRequest{
		Model:      e.model,
		Task:       e.task,
		Inputs:     text,
		Parameters: d,
		Options:    pipelineOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, doErr(ctx, "pipeline", err)
	}
	defer resp.Body.Close()
	if err := checkStatus("pipeline", resp); err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, doErr(ctx, "pipeline", err)
	}
	gens, err := decodeGenerations(raw)
	if err != nil {
		return nil, err
	}
	// Some servers ignore return_full_text=false; strip the echo ourselves.
	if e.task == TaskTextGeneration && !d.ReturnFullText {
		for i := range gens {
			gens[i].GeneratedText = stripEcho(text, gens[i].GeneratedText)
		}
	}
	return gens, nil
}

// decodeGenerations accepts a list of generations, a single generation
// object, or an {"error": ...} envelope.
func decodeGenerations(raw []byte) ([]Generation, error) {
	var list []Generation
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, fmt.Errorf("pipeline returned no generations")
		}
		return list, nil
	}
	var obj struct {
		GeneratedText *string `json:"generated_text"`
		Error         string  `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode pipeline response: %w", err)
	}
	if obj.Error != "" {
		return nil, fmt.Errorf("pipeline error: %s", obj.Error)
	}
	if obj.GeneratedText == nil {
		return nil, fmt.Errorf("pipeline response missing generated_text")
	}
	return []Generation{{GeneratedText: *obj.GeneratedText}}, nil
}
