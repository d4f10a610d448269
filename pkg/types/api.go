package types

// ChatRequest is the payload accepted by POST /chat.
type ChatRequest struct {
	// Prompt text. Required; may be empty.
	// example: What is Apple?
	Prompt string `json:"prompt" example:"What is Apple?"`
	// Maximum number of new tokens to generate. Each backend clamps this further.
	// example: 120
	MaxNewTokens int `json:"max_new_tokens" example:"120"`
	// Routing mode: small, large or auto.
	// example: auto
	Mode string `json:"mode" example:"auto"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	// Model identifier of the backend that served the request.
	// example: distilgpt2
	ModelUsed string `json:"model_used" example:"distilgpt2"`
	// Wall-clock generation latency in milliseconds.
	// example: 812.4
	LatencyMs float64 `json:"latency_ms" example:"812.4"`
	// Generated continuation.
	// example: Apple is a technology company.
	Text string `json:"text" example:"Apple is a technology company."`
	// Why this backend was chosen: forced_small, forced_large, prompt_long or small_ok.
	// example: small_ok
	RoutedReason string `json:"routed_reason" example:"small_ok"`
}

// MetricsResponse is returned by GET /metrics.
type MetricsResponse struct {
	// Running mean latency of the small backend in milliseconds.
	// example: 640.2
	SmallMsAvg float64 `json:"small_ms_avg" example:"640.2"`
	// Running mean latency of the large backend in milliseconds.
	// example: 2310.7
	LargeMsAvg float64 `json:"large_ms_avg" example:"2310.7"`
	// Completed small generations.
	// example: 12
	SmallN int64 `json:"small_n" example:"12"`
	// Completed large generations.
	// example: 3
	LargeN int64 `json:"large_n" example:"3"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// BackendStatus summarizes one backend for /status.
type BackendStatus struct {
	// Backend kind (small or large).
	// example: small
	Kind string `json:"kind" example:"small"`
	// Model identifier.
	// example: distilgpt2
	Model string `json:"model" example:"distilgpt2"`
	// Engine type backing this backend.
	// example: pipeline
	Engine string `json:"engine" example:"pipeline"`
	// Engine lifecycle state: idle, loading, ready or error.
	// example: ready
	State string `json:"state" example:"ready"`
	// Last engine initialization error, if any.
	Error string `json:"error,omitempty"`
	// Maximum concurrent generations admitted.
	// example: 2
	Capacity int `json:"capacity" example:"2"`
	// Generations currently admitted.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Callers waiting for admission.
	// example: 0
	Waiting int `json:"waiting" example:"0"`
	// Upper bound applied to max_new_tokens.
	// example: 48
	MaxNewTokensCap int `json:"max_new_tokens_cap" example:"48"`
	// Prompt template name.
	// example: qa_primer
	Template string `json:"template" example:"qa_primer"`
	// Running mean latency in milliseconds.
	// example: 640.2
	AvgMs float64 `json:"avg_ms" example:"640.2"`
	// Completed generations.
	// example: 12
	Count int64 `json:"count" example:"12"`
	// Failed generations since start.
	// example: 0
	Failures int64 `json:"failures" example:"0"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Backends in routing order (small first).
	Backends []BackendStatus `json:"backends"`
	// Prompt length (characters) at or above which auto mode picks the large backend.
	// example: 160
	ThresholdChars int `json:"threshold_chars" example:"160"`
	// Whether unknown modes fall back to auto routing.
	// example: false
	PermissiveModes bool `json:"permissive_modes" example:"false"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
