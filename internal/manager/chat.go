package manager

import (
	"context"
	"fmt"
	"time"

	"routerd/internal/router"
	"routerd/pkg/types"
)

// Chat routes req to a backend, waits for admission, generates and records
// the latency. Failed generations are not recorded in the running stats;
// the gate is released on every path. ctx bounds only the wait for
// admission: once started, a generation runs to completion or failure and
// is cut short only by a deadline already carried by ctx.
func (m *Manager) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	if req.MaxNewTokens <= 0 {
		return types.ChatResponse{}, ErrValidation("max_new_tokens must be positive")
	}
	if req.MaxNewTokens > m.tokLimit {
		return types.ChatResponse{}, ErrValidation(fmt.Sprintf("max_new_tokens must be at most %d", m.tokLimit))
	}
	mode, err := m.router.ParseMode(req.Mode)
	if err != nil {
		if u, ok := err.(*router.UnknownModeError); ok {
			return types.ChatResponse{}, unknownModeError{err: u}
		}
		return types.ChatResponse{}, err
	}
	dec := m.router.Route(req.Prompt, mode)
	s := m.slots[dec.Kind]
	kind := string(dec.Kind)
	m.publish(EventChatRouted, kind, map[string]any{"reason": string(dec.Reason)})

	release, err := m.beginGeneration(ctx, s)
	if err != nil {
		return types.ChatResponse{}, err
	}
	defer release()

	genCtx, cancel := generationContext(ctx)
	defer cancel()

	start := time.Now()
	text, err := s.backend.Generate(genCtx, req.Prompt, req.MaxNewTokens)
	elapsed := time.Since(start)
	if err != nil {
		s.failures.Add(1)
		generationFailures.WithLabelValues(kind).Inc()
		m.publish(EventChatFailed, kind, map[string]any{"reason": string(dec.Reason), "error": err.Error()})
		m.log.Error().Str("backend", kind).Str("reason", string(dec.Reason)).Err(err).Msg("generation failed")
		return types.ChatResponse{}, err
	}
	ms := float64(elapsed) / float64(time.Millisecond)
	m.stats.Record(dec.Kind, ms)
	generationDuration.WithLabelValues(kind, string(dec.Reason)).Observe(elapsed.Seconds())
	m.publish(EventChatCompleted, kind, map[string]any{"reason": string(dec.Reason), "latency_ms": ms})
	m.log.Debug().Str("backend", kind).Str("reason", string(dec.Reason)).Float64("latency_ms", ms).Msg("generation done")

	return types.ChatResponse{
		ModelUsed:    s.backend.Model(),
		LatencyMs:    ms,
		Text:         text,
		RoutedReason: string(dec.Reason),
	}, nil
}

// generationContext detaches ctx from cancellation (client disconnect,
// server shutdown) but keeps its deadline, which is set only when a chat
// timeout is configured.
func generationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if dl, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, dl)
	}
	return detached, func() {}
}
