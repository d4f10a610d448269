package manager

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"routerd/internal/router"
	"routerd/pkg/types"
)

func TestNewWithConfigDefaults(t *testing.T) {
	m, _, _ := newTestManager(t, echoEngine("a"), echoEngine("b"), testOptions{})
	if m.MaxNewTokensLimit() != defaultMaxNewTokensLimit {
		t.Fatalf("expected default token limit %d, got %d", defaultMaxNewTokensLimit, m.MaxNewTokensLimit())
	}
	if m.Gate(types.KindSmall).Capacity() != 2 || m.Gate(types.KindLarge).Capacity() != 1 {
		t.Fatalf("unexpected default capacities")
	}
	if m.Router().Threshold() != router.DefaultThreshold {
		t.Fatalf("unexpected default threshold %d", m.Router().Threshold())
	}
	if m.Backend("medium") != nil || m.Gate("medium") != nil {
		t.Fatalf("unknown kinds should return nil")
	}
}

func TestNewWithConfigRequiresBothBackends(t *testing.T) {
	small := newTestBackend(t, types.KindSmall, echoEngine("a"), nil)
	if _, err := NewWithConfig(ManagerConfig{Small: small}); err == nil {
		t.Fatalf("expected error without large backend")
	}
	if _, err := NewWithConfig(ManagerConfig{Small: small, Large: small}); err == nil {
		t.Fatalf("expected error for mismatched kinds")
	}
}

func TestReadyAfterFirstUseOfBoth(t *testing.T) {
	m, _, _ := newTestManager(t, echoEngine("a"), echoEngine("b"), testOptions{})
	if m.Ready() {
		t.Fatalf("engines are lazy; expected not ready initially")
	}
	if _, err := m.Chat(context.Background(), types.ChatRequest{Prompt: "hi", MaxNewTokens: 5}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if m.Ready() {
		t.Fatalf("large engine still uninitialized")
	}
	if _, err := m.Chat(context.Background(), types.ChatRequest{Prompt: "hi", Mode: "large", MaxNewTokens: 5}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("expected ready after both engines initialized")
	}
}

func TestWarmup(t *testing.T) {
	m, _, pub := newTestManager(t, echoEngine("a"), echoEngine("b"), testOptions{})
	if err := m.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("expected ready after warmup")
	}
	if n := len(pub.Named(EventWarmup)); n != 2 {
		t.Fatalf("expected 2 warmup events, got %d", n)
	}
}

func TestWarmupFailureIsRetriedOnDemand(t *testing.T) {
	m, _, _ := newTestManager(t, echoEngine("a"), echoEngine("b"), testOptions{
		openErr: map[types.Kind]error{types.KindLarge: errors.New("no weights")},
	})
	err := m.Warmup(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no weights") {
		t.Fatalf("expected warmup error, got %v", err)
	}
	if m.Ready() {
		t.Fatalf("must not be ready with a failed engine")
	}
	st := m.Status()
	if st.Backends[1].State != "error" || st.Backends[1].Error != "no weights" {
		t.Fatalf("unexpected large status: %+v", st.Backends[1])
	}
	if st.Backends[0].State != "ready" {
		t.Fatalf("small engine should have initialized: %+v", st.Backends[0])
	}
}

func TestStatusReport(t *testing.T) {
	m, _, _ := newTestManager(t, echoEngine("a"), echoEngine("b"), testOptions{})
	fixed := m.startTime.Add(90 * time.Second)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	if _, err := m.Chat(context.Background(), types.ChatRequest{Prompt: "hi", MaxNewTokens: 5}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	st := m.Status()
	if st.UptimeSeconds != 90 || st.ServerTimeUnix != fixed.Unix() {
		t.Fatalf("unexpected clock fields: %+v", st)
	}
	if st.ThresholdChars != 160 || st.PermissiveModes {
		t.Fatalf("unexpected router fields: %+v", st)
	}
	if len(st.Backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(st.Backends))
	}
	small, large := st.Backends[0], st.Backends[1]
	if small.Kind != "small" || small.Model != "distilgpt2" || small.Capacity != 2 || small.MaxNewTokensCap != 48 ||
		small.Template != "qa_primer" || small.State != "ready" || small.Count != 1 || small.Inflight != 0 {
		t.Fatalf("unexpected small status: %+v", small)
	}
	if large.Kind != "large" || large.Model != "google/flan-t5-large" || large.Capacity != 1 || large.MaxNewTokensCap != 200 ||
		large.Template != "concise_encyclopedia" || large.State != "idle" || large.Count != 0 {
		t.Fatalf("unexpected large status: %+v", large)
	}
}

func TestFailureIsLogged(t *testing.T) {
	m, logs, _ := newTestManager(t, &recordingEngine{err: errors.New("kaput")}, echoEngine("b"), testOptions{})
	_, _ = m.Chat(context.Background(), types.ChatRequest{Prompt: "hi", MaxNewTokens: 5})
	out := logs.String()
	if !strings.Contains(out, `"backend":"small"`) || !strings.Contains(out, "kaput") {
		t.Fatalf("expected failure log line, got %s", out)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t, echoEngine("a"), echoEngine("b"), testOptions{})
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
