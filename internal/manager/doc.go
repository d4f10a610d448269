// Package manager coordinates chat requests across the small and large
// backends. It is structured into small files by concern:
//
//   - manager.go: core Manager type, getters and Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: per-backend slot wiring (backend + gate).
//   - errors.go: error types and helpers (IsValidation, IsUnknownMode, IsDependencyUnavailable).
//   - admission.go: gate acquisition with events and wait accounting.
//   - chat.go: Chat, the request path (route, admit, generate, record).
//   - warmup.go: Warmup initializes both engines before serving.
//   - status_report.go: Status/Stats/Ready reporting helpers.
//   - metrics.go: Prometheus collectors for generations and gates.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, Chat, Stats, Status, Ready, Warmup).
package manager
