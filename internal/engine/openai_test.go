package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// sseWriter helps write SSE-style lines.
type sseWriter struct{ w http.ResponseWriter }

func (sw sseWriter) writeLine(line string) {
	_, _ = sw.w.Write([]byte(line + "\n"))
	if f, ok := sw.w.(http.Flusher); ok {
		f.Flush()
	}
}

func TestOpenAI_StreamsCompletion(t *testing.T) {
	var got openAICompletionRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		sw := sseWriter{w: w}
		sw.writeLine(`data: {"choices":[{"text":"Hello"}]}`)
		sw.writeLine("")
		sw.writeLine(`data: {"choices":[{"text":" World","finish_reason":"stop"}]}`)
		sw.writeLine("data: [DONE]")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	e := NewOpenAI(Spec{Endpoint: ts.URL, Model: "flan"})
	gens, err := e.Generate(testCtx(t), "Say hi", Decoding{MaxNewTokens: 16, RepetitionPenalty: 1.5, Seed: 42})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gens[0].GeneratedText != "Hello World" {
		t.Fatalf("unexpected output: %q", gens[0].GeneratedText)
	}
	if got.Model != "flan" || got.MaxTokens != 16 || got.Temperature != 0 || got.TopK != 1 || got.RepeatPenalty != 1.5 || got.Seed != 42 || !got.Stream {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestOpenAI_RawJSONLines(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := sseWriter{w: w}
		sw.writeLine(`{"content":"a"}`)
		sw.writeLine(`{"content":"b"}`)
	}))
	defer ts.Close()
	gens, err := NewOpenAI(Spec{Endpoint: ts.URL}).Generate(testCtx(t), "x", Decoding{})
	if err != nil || gens[0].GeneratedText != "ab" {
		t.Fatalf("got %+v %v", gens, err)
	}
}

func TestOpenAI_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer ts.Close()
	if _, err := NewOpenAI(Spec{Endpoint: ts.URL}).Generate(testCtx(t), "x", Decoding{}); err == nil {
		t.Fatalf("expected error on HTTP 500")
	}
}

func TestOpenAI_RequestTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		sw := sseWriter{w: w}
		for i := 0; i < 5; i++ {
			sw.writeLine(`data: {"choices":[{"text":"x"}]}`)
			select {
			case <-r.Context().Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
		}
		sw.writeLine("data: [DONE]")
	}))
	defer ts.Close()
	_, err := NewOpenAI(Spec{Endpoint: ts.URL, RequestTimeout: 250 * time.Millisecond}).Generate(context.Background(), "x", Decoding{})
	if err == nil {
		t.Fatalf("expected deadline error due to short request timeout")
	}
}
