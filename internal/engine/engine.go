// Package engine talks to the text-generation runtimes behind each backend.
//
// An Engine turns an already-templated prompt plus a decoding policy into
// one or more generations. Implementations:
//
//   - pipeline: HTTP text-generation pipeline server ({"inputs", "parameters"} -> [{"generated_text"}]).
//   - openai:   OpenAI-compatible /v1/completions server (e.g. llama.cpp server), streamed.
//   - llama:    in-process go-llama.cpp; requires `-tags=llama`, otherwise a stub.
//   - echo:     deterministic local engine for demos and tests.
//
// Engines must be safe for concurrent use; the caller bounds concurrency.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Task is the kind of model an engine drives.
type Task string

const (
	// TaskTextGeneration is causal continuation: the model extends the input.
	TaskTextGeneration Task = "text-generation"
	// TaskText2Text is sequence-to-sequence instruction following.
	TaskText2Text Task = "text2text-generation"
)

// Decoding is a fixed generation policy.
type Decoding struct {
	MaxNewTokens      int     `json:"max_new_tokens" yaml:"max_new_tokens" toml:"max_new_tokens"`
	DoSample          bool    `json:"do_sample" yaml:"do_sample" toml:"do_sample"`
	NumBeams          int     `json:"num_beams,omitempty" yaml:"num_beams" toml:"num_beams"`
	EarlyStopping     bool    `json:"early_stopping,omitempty" yaml:"early_stopping" toml:"early_stopping"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size,omitempty" yaml:"no_repeat_ngram_size" toml:"no_repeat_ngram_size"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty" yaml:"repetition_penalty" toml:"repetition_penalty"`
	EOSAsPad          bool    `json:"pad_token_id_from_eos,omitempty" yaml:"pad_token_id_from_eos" toml:"pad_token_id_from_eos"`
	ReturnFullText    bool    `json:"return_full_text" yaml:"return_full_text" toml:"return_full_text"`
	Seed              int     `json:"seed,omitempty" yaml:"seed" toml:"seed"`
}

// Generation is one output sequence.
type Generation struct {
	GeneratedText string `json:"generated_text"`
}

// Engine generates text for a prompt.
type Engine interface {
	Generate(ctx context.Context, text string, d Decoding) ([]Generation, error)
}

// Closer is implemented by engines holding native resources.
type Closer interface {
	Close() error
}

// Spec selects and configures an engine.
type Spec struct {
	// Type is one of pipeline, openai, llama, echo.
	Type string
	// Model is the model identifier sent to servers or resolved on disk.
	Model string
	Task  Task
	// Endpoint is the server URL for pipeline/openai engines.
	Endpoint string
	APIKey   string
	// ModelsDir is scanned for .gguf files by the llama engine.
	ModelsDir      string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	// Threads and ContextSize tune the llama engine.
	Threads     int
	ContextSize int
	// Reply and Delay configure the echo engine.
	Reply string
	Delay time.Duration
}

// Open constructs the engine described by spec. Network engines do not
// contact their server here; the first Generate does.
func Open(spec Spec) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Type)) {
	case "pipeline", "":
		if spec.Endpoint == "" {
			return nil, fmt.Errorf("pipeline engine for %q: endpoint is required", spec.Model)
		}
		return NewPipeline(spec), nil
	case "openai":
		if spec.Endpoint == "" {
			return nil, fmt.Errorf("openai engine for %q: endpoint is required", spec.Model)
		}
		return NewOpenAI(spec), nil
	case "llama":
		return NewLlama(spec)
	case "echo":
		return NewEcho(spec), nil
	default:
		return nil, fmt.Errorf("unknown engine type %q", spec.Type)
	}
}

// stripEcho removes a leading copy of the input from out.
func stripEcho(input, out string) string {
	if input != "" && strings.HasPrefix(out, input) {
		return out[len(input):]
	}
	return out
}
