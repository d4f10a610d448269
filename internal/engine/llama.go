//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"routerd/internal/registry"
)

// llamaBuilt indicates this binary was compiled with in-process llama support.
var llamaBuilt = true

// llamaEngine owns a loaded model. go-llama.cpp contexts are not safe for
// concurrent prediction, so calls serialize on mu.
type llamaEngine struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

// NewLlama resolves spec.Model inside spec.ModelsDir and loads it.
func NewLlama(spec Spec) (Engine, error) {
	mdl, err := registry.Resolve(spec.ModelsDir, spec.Model)
	if err != nil {
		return nil, err
	}
	ctxSize := spec.ContextSize
	if ctxSize <= 0 {
		ctxSize = 1024
	}
	m, err := llama.New(mdl.Path, llama.SetContext(ctxSize))
	if err != nil {
		return nil, err
	}
	return &llamaEngine{model: m, threads: spec.Threads}, nil
}

func (e *llamaEngine) Generate(ctx context.Context, text string, d Decoding) ([]Generation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	// Stop at the callback boundary when the caller goes away.
	e.model.SetTokenCallback(func(string) bool { return ctx.Err() == nil })
	out, err := e.model.Predict(text, predictOptions(d, e.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if !d.ReturnFullText {
		out = stripEcho(text, out)
	}
	return []Generation{{GeneratedText: strings.TrimRight(out, "\x00")}}, nil
}

func (e *llamaEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

// predictOptions maps a decoding policy onto go-llama.cpp. Beam search is
// not exposed by the binding; deterministic policies become greedy decoding.
func predictOptions(d Decoding, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, d.MaxNewTokens)),
		llama.SetThreads(max(1, threads)),
	}
	if d.DoSample {
		po = append(po, llama.SetTemperature(llama.DefaultOptions.Temperature), llama.SetTopK(llama.DefaultOptions.TopK))
	} else {
		po = append(po, llama.SetTemperature(0), llama.SetTopK(1))
	}
	if d.RepetitionPenalty > 0 {
		po = append(po, llama.SetPenalty(float32(d.RepetitionPenalty)))
	}
	if d.Seed != 0 {
		po = append(po, llama.SetSeed(d.Seed))
	}
	return po
}
