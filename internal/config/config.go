// Package config defines routerd's runtime configuration and its file
// formats.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"routerd/internal/engine"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified"; Default supplies the built-in values.
type Config struct {
	Addr               string            `json:"addr,omitempty" yaml:"addr,omitempty" toml:"addr,omitempty"`
	LogLevel           string            `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	LogFormat          string            `json:"log_format,omitempty" yaml:"log_format,omitempty" toml:"log_format,omitempty"`
	MaxBodyBytes       int64             `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty" toml:"max_body_bytes,omitempty"`
	ChatTimeoutSeconds int64             `json:"chat_timeout_seconds,omitempty" yaml:"chat_timeout_seconds,omitempty" toml:"chat_timeout_seconds,omitempty"`
	MaxNewTokensLimit  int               `json:"max_new_tokens_limit,omitempty" yaml:"max_new_tokens_limit,omitempty" toml:"max_new_tokens_limit,omitempty"`
	Warmup             bool              `json:"warmup,omitempty" yaml:"warmup,omitempty" toml:"warmup,omitempty"`
	CORS               CORS              `json:"cors" yaml:"cors" toml:"cors"`
	Router             Router            `json:"router" yaml:"router" toml:"router"`
	Backends           Backends          `json:"backends" yaml:"backends" toml:"backends"`
	Templates          map[string]string `json:"templates,omitempty" yaml:"templates,omitempty" toml:"templates,omitempty"`
}

// CORS configures the opt-in CORS middleware.
type CORS struct {
	Enabled bool     `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Origins []string `json:"origins,omitempty" yaml:"origins,omitempty" toml:"origins,omitempty"`
	Methods []string `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods,omitempty"`
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
}

// Router configures backend selection.
type Router struct {
	ThresholdChars  int  `json:"threshold_chars,omitempty" yaml:"threshold_chars,omitempty" toml:"threshold_chars,omitempty"`
	PermissiveModes bool `json:"permissive_modes,omitempty" yaml:"permissive_modes,omitempty" toml:"permissive_modes,omitempty"`
}

// Backends holds the two backend definitions.
type Backends struct {
	Small Backend `json:"small" yaml:"small" toml:"small"`
	Large Backend `json:"large" yaml:"large" toml:"large"`
}

// Backend describes one model backend and the engine serving it.
type Backend struct {
	Model                 string            `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`
	Engine                string            `json:"engine,omitempty" yaml:"engine,omitempty" toml:"engine,omitempty"`
	Task                  string            `json:"task,omitempty" yaml:"task,omitempty" toml:"task,omitempty"`
	Endpoint              string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	APIKey                string            `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key,omitempty"`
	ModelsDir             string            `json:"models_dir,omitempty" yaml:"models_dir,omitempty" toml:"models_dir,omitempty"`
	Capacity              int               `json:"capacity,omitempty" yaml:"capacity,omitempty" toml:"capacity,omitempty"`
	MaxNewTokensCap       int               `json:"max_new_tokens_cap,omitempty" yaml:"max_new_tokens_cap,omitempty" toml:"max_new_tokens_cap,omitempty"`
	Template              string            `json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty"`
	RequestTimeoutSeconds int               `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty" toml:"request_timeout_seconds,omitempty"`
	ConnectTimeoutSeconds int               `json:"connect_timeout_seconds,omitempty" yaml:"connect_timeout_seconds,omitempty" toml:"connect_timeout_seconds,omitempty"`
	Threads               int               `json:"threads,omitempty" yaml:"threads,omitempty" toml:"threads,omitempty"`
	ContextSize           int               `json:"context_size,omitempty" yaml:"context_size,omitempty" toml:"context_size,omitempty"`
	Reply                 string            `json:"reply,omitempty" yaml:"reply,omitempty" toml:"reply,omitempty"`
	Decoding              DecodingOverrides `json:"decoding" yaml:"decoding" toml:"decoding"`
}

// DecodingOverrides replaces individual fields of a backend's built-in
// decoding policy. Nil fields keep the built-in value.
type DecodingOverrides struct {
	DoSample          *bool    `json:"do_sample,omitempty" yaml:"do_sample,omitempty" toml:"do_sample,omitempty"`
	NumBeams          *int     `json:"num_beams,omitempty" yaml:"num_beams,omitempty" toml:"num_beams,omitempty"`
	EarlyStopping     *bool    `json:"early_stopping,omitempty" yaml:"early_stopping,omitempty" toml:"early_stopping,omitempty"`
	NoRepeatNgramSize *int     `json:"no_repeat_ngram_size,omitempty" yaml:"no_repeat_ngram_size,omitempty" toml:"no_repeat_ngram_size,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty" yaml:"repetition_penalty,omitempty" toml:"repetition_penalty,omitempty"`
	EOSAsPad          *bool    `json:"pad_token_id_from_eos,omitempty" yaml:"pad_token_id_from_eos,omitempty" toml:"pad_token_id_from_eos,omitempty"`
	ReturnFullText    *bool    `json:"return_full_text,omitempty" yaml:"return_full_text,omitempty" toml:"return_full_text,omitempty"`
	Seed              *int     `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
}

// Apply returns d with every non-nil override substituted.
func (o DecodingOverrides) Apply(d engine.Decoding) engine.Decoding {
	if o.DoSample != nil {
		d.DoSample = *o.DoSample
	}
	if o.NumBeams != nil {
		d.NumBeams = *o.NumBeams
	}
	if o.EarlyStopping != nil {
		d.EarlyStopping = *o.EarlyStopping
	}
	if o.NoRepeatNgramSize != nil {
		d.NoRepeatNgramSize = *o.NoRepeatNgramSize
	}
	if o.RepetitionPenalty != nil {
		d.RepetitionPenalty = *o.RepetitionPenalty
	}
	if o.EOSAsPad != nil {
		d.EOSAsPad = *o.EOSAsPad
	}
	if o.ReturnFullText != nil {
		d.ReturnFullText = *o.ReturnFullText
	}
	if o.Seed != nil {
		d.Seed = *o.Seed
	}
	return d
}

// EngineSpec converts b into an engine.Spec.
func (b Backend) EngineSpec() engine.Spec {
	return engine.Spec{
		Type:           b.Engine,
		Model:          b.Model,
		Task:           engine.Task(b.Task),
		Endpoint:       b.Endpoint,
		APIKey:         b.APIKey,
		ModelsDir:      b.ModelsDir,
		RequestTimeout: time.Duration(b.RequestTimeoutSeconds) * time.Second,
		ConnectTimeout: time.Duration(b.ConnectTimeoutSeconds) * time.Second,
		Threads:        b.Threads,
		ContextSize:    b.ContextSize,
		Reply:          b.Reply,
	}
}

// Default returns the built-in configuration: distilgpt2 and
// flan-t5-large behind local pipeline servers, routed at 160 characters.
func Default() Config {
	return Config{
		Addr:              ":8000",
		LogLevel:          "info",
		LogFormat:         "console",
		MaxBodyBytes:      1 << 20,
		MaxNewTokensLimit: 4096,
		CORS: CORS{
			Methods: []string{"GET", "POST", "OPTIONS"},
			Headers: []string{"Content-Type", "X-Log-Level"},
		},
		Router: Router{ThresholdChars: 160},
		Backends: Backends{
			Small: Backend{
				Model:           "distilgpt2",
				Engine:          "pipeline",
				Task:            string(engine.TaskTextGeneration),
				Endpoint:        "http://127.0.0.1:8081",
				Capacity:        2,
				MaxNewTokensCap: 48,
				Template:        "qa_primer",
			},
			Large: Backend{
				Model:           "google/flan-t5-large",
				Engine:          "pipeline",
				Task:            string(engine.TaskText2Text),
				Endpoint:        "http://127.0.0.1:8082",
				Capacity:        1,
				MaxNewTokensCap: 200,
				Template:        "concise_encyclopedia",
			},
		},
	}
}

// Merge overlays the non-zero fields of over onto base. Booleans can only
// be switched on; slices and maps replace (templates merge by key).
func Merge(base, over Config) Config {
	out := base
	setStr(&out.Addr, over.Addr)
	setStr(&out.LogLevel, over.LogLevel)
	setStr(&out.LogFormat, over.LogFormat)
	setInt64(&out.MaxBodyBytes, over.MaxBodyBytes)
	setInt64(&out.ChatTimeoutSeconds, over.ChatTimeoutSeconds)
	setInt(&out.MaxNewTokensLimit, over.MaxNewTokensLimit)
	out.Warmup = out.Warmup || over.Warmup

	out.CORS.Enabled = out.CORS.Enabled || over.CORS.Enabled
	setSlice(&out.CORS.Origins, over.CORS.Origins)
	setSlice(&out.CORS.Methods, over.CORS.Methods)
	setSlice(&out.CORS.Headers, over.CORS.Headers)

	setInt(&out.Router.ThresholdChars, over.Router.ThresholdChars)
	out.Router.PermissiveModes = out.Router.PermissiveModes || over.Router.PermissiveModes

	out.Backends.Small = mergeBackend(base.Backends.Small, over.Backends.Small)
	out.Backends.Large = mergeBackend(base.Backends.Large, over.Backends.Large)

	if len(base.Templates)+len(over.Templates) > 0 {
		out.Templates = make(map[string]string, len(base.Templates)+len(over.Templates))
		for k, v := range base.Templates {
			out.Templates[k] = v
		}
		for k, v := range over.Templates {
			out.Templates[k] = v
		}
	}
	return out
}

func mergeBackend(base, over Backend) Backend {
	out := base
	setStr(&out.Model, over.Model)
	setStr(&out.Engine, over.Engine)
	setStr(&out.Task, over.Task)
	setStr(&out.Endpoint, over.Endpoint)
	setStr(&out.APIKey, over.APIKey)
	setStr(&out.ModelsDir, over.ModelsDir)
	setInt(&out.Capacity, over.Capacity)
	setInt(&out.MaxNewTokensCap, over.MaxNewTokensCap)
	setStr(&out.Template, over.Template)
	setInt(&out.RequestTimeoutSeconds, over.RequestTimeoutSeconds)
	setInt(&out.ConnectTimeoutSeconds, over.ConnectTimeoutSeconds)
	setInt(&out.Threads, over.Threads)
	setInt(&out.ContextSize, over.ContextSize)
	setStr(&out.Reply, over.Reply)
	d := &out.Decoding
	o := over.Decoding
	if o.DoSample != nil {
		d.DoSample = o.DoSample
	}
	if o.NumBeams != nil {
		d.NumBeams = o.NumBeams
	}
	if o.EarlyStopping != nil {
		d.EarlyStopping = o.EarlyStopping
	}
	if o.NoRepeatNgramSize != nil {
		d.NoRepeatNgramSize = o.NoRepeatNgramSize
	}
	if o.RepetitionPenalty != nil {
		d.RepetitionPenalty = o.RepetitionPenalty
	}
	if o.EOSAsPad != nil {
		d.EOSAsPad = o.EOSAsPad
	}
	if o.ReturnFullText != nil {
		d.ReturnFullText = o.ReturnFullText
	}
	if o.Seed != nil {
		d.Seed = o.Seed
	}
	return out
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setInt64(dst *int64, v int64) {
	if v != 0 {
		*dst = v
	}
}

func setSlice(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = append([]string(nil), v...)
	}
}

var knownEngines = map[string]bool{"pipeline": true, "openai": true, "llama": true, "echo": true}

// Validate reports every problem found in cfg.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json", "":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: want console or json", c.LogFormat))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("max_body_bytes must not be negative"))
	}
	if c.ChatTimeoutSeconds < 0 {
		errs = append(errs, errors.New("chat_timeout_seconds must not be negative"))
	}
	if c.MaxNewTokensLimit < 0 {
		errs = append(errs, errors.New("max_new_tokens_limit must not be negative"))
	}
	if c.Router.ThresholdChars <= 0 {
		errs = append(errs, errors.New("router.threshold_chars must be positive"))
	}
	errs = append(errs, c.Backends.Small.validate("small")...)
	errs = append(errs, c.Backends.Large.validate("large")...)
	return errors.Join(errs...)
}

func (b Backend) validate(name string) []error {
	var errs []error
	prefix := "backends." + name + "."
	if strings.TrimSpace(b.Model) == "" {
		errs = append(errs, errors.New(prefix+"model is required"))
	}
	eng := strings.ToLower(b.Engine)
	if !knownEngines[eng] {
		errs = append(errs, fmt.Errorf("%sengine %q: want pipeline, openai, llama or echo", prefix, b.Engine))
	}
	if (eng == "pipeline" || eng == "openai") && strings.TrimSpace(b.Endpoint) == "" {
		errs = append(errs, fmt.Errorf("%sendpoint is required for engine %s", prefix, eng))
	}
	switch engine.Task(b.Task) {
	case engine.TaskTextGeneration, engine.TaskText2Text, "":
	default:
		errs = append(errs, fmt.Errorf("%stask %q: want %s or %s", prefix, b.Task, engine.TaskTextGeneration, engine.TaskText2Text))
	}
	if b.Capacity <= 0 {
		errs = append(errs, errors.New(prefix+"capacity must be positive"))
	}
	if b.MaxNewTokensCap <= 0 {
		errs = append(errs, errors.New(prefix+"max_new_tokens_cap must be positive"))
	}
	if strings.TrimSpace(b.Template) == "" {
		errs = append(errs, errors.New(prefix+"template is required"))
	}
	if b.RequestTimeoutSeconds < 0 || b.ConnectTimeoutSeconds < 0 {
		errs = append(errs, errors.New(prefix+"timeouts must not be negative"))
	}
	return errs
}
