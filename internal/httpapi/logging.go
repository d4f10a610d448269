package httpapi

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger for the HTTP layer; Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug", "1":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel is read once from ROUTERD_LOG_LEVEL; unset means info.
var defaultLogLevel = func() LogLevel {
	v, ok := os.LookupEnv("ROUTERD_LOG_LEVEL")
	if !ok {
		return LevelInfo
	}
	return parseLevel(v)
}()

// requestLogLevel applies per-request overrides: ?log= first, then the
// X-Log-Level header.
func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// chatLog carries request-scoped logging state for one /chat call.
type chatLog struct {
	lvl   LogLevel
	rid   string
	start time.Time
}

func newChatLog(r *http.Request) chatLog {
	return chatLog{lvl: requestLogLevel(r), rid: middleware.GetReqID(r.Context()), start: time.Now()}
}

func (c chatLog) event(level zerolog.Level) *zerolog.Event {
	e := zlog.WithLevel(level)
	if c.rid != "" {
		e = e.Str("request_id", c.rid)
	}
	return e
}

func (c chatLog) begin(mode string, maxNewTokens int, prompt string) {
	if c.lvl < LevelInfo {
		return
	}
	e := c.event(zerolog.InfoLevel).Str("mode", mode).Int("max_new_tokens", maxNewTokens).Int("prompt_len", len(prompt))
	if c.lvl >= LevelDebug {
		e = e.Str("prompt", prompt)
	}
	e.Msg("chat start")
}

func (c chatLog) end(status int, model, reason string, err error) {
	switch {
	case c.lvl >= LevelInfo:
	case c.lvl >= LevelError && status >= http.StatusInternalServerError:
	default:
		return
	}
	level := zerolog.InfoLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	e := c.event(level).Int("status", status).Dur("dur", time.Since(c.start))
	if model != "" {
		e = e.Str("model", model).Str("reason", reason)
	}
	if err != nil {
		e = e.Err(err)
	}
	e.Msg("chat end")
}

func (c chatLog) text(text string) {
	if c.lvl >= LevelDebug {
		c.event(zerolog.DebugLevel).Str("text", text).Msg("chat output")
	}
}
