package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"routerd/internal/app"
	"routerd/internal/config"
	"routerd/internal/manager"
)

// newServer builds the whole service from cfg behind an httptest server.
func newServer(t *testing.T, cfg config.Config) (*httptest.Server, *app.App, *manager.MemoryPublisher) {
	t.Helper()
	pub := manager.NewMemoryPublisher()
	a, err := app.Build(cfg, zerolog.Nop(), app.Options{Publisher: pub})
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler)
	t.Cleanup(func() {
		srv.Close()
		_ = a.Manager.Close()
	})
	return srv, a, pub
}

// pipelineCall is one request seen by a fakePipeline.
type pipelineCall struct {
	Model      string         `json:"model"`
	Task       string         `json:"task"`
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
}

// fakePipeline is a text-generation pipeline server. reply computes the
// generated text for each call; a nil reply echoes nothing useful back.
type fakePipeline struct {
	*httptest.Server
	mu    sync.Mutex
	calls []pipelineCall
}

func newFakePipeline(t *testing.T, reply func(c pipelineCall) (int, string)) *fakePipeline {
	t.Helper()
	fp := &fakePipeline{}
	fp.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c pipelineCall
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fp.mu.Lock()
		fp.calls = append(fp.calls, c)
		fp.mu.Unlock()
		status, body := reply(c)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(fp.Close)
	return fp
}

func (fp *fakePipeline) Calls() []pipelineCall {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]pipelineCall(nil), fp.calls...)
}

func generated(text string) string {
	b, _ := json.Marshal([]map[string]string{{"generated_text": text}})
	return string(b)
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}
