package engine

import (
	"context"
	"strings"
	"time"
)

// echoEngine answers without a model. With a configured reply it returns
// that reply; otherwise it repeats the last non-empty input line. Output is
// cut to MaxNewTokens whitespace-separated words.
type echoEngine struct {
	reply string
	delay time.Duration
}

// NewEcho constructs an echo engine.
func NewEcho(spec Spec) Engine {
	return &echoEngine{reply: spec.Reply, delay: spec.Delay}
}

func (e *echoEngine) Generate(ctx context.Context, text string, d Decoding) ([]Generation, error) {
	if e.delay > 0 {
		t := time.NewTimer(e.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := e.reply
	if out == "" {
		lines := strings.Split(strings.TrimSpace(text), "\n")
		out = strings.TrimSpace(lines[len(lines)-1])
	}
	if words := strings.Fields(out); d.MaxNewTokens > 0 && len(words) > d.MaxNewTokens {
		out = strings.Join(words[:d.MaxNewTokens], " ")
	}
	if d.ReturnFullText {
		out = text + " " + out
	}
	return []Generation{{GeneratedText: " " + out}}, nil
}
