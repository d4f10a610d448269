package main

// General API documentation for swaggo. Regenerate internal/httpapi/docs with
// `swag init -g cmd/routerd/docs.go -o internal/httpapi/docs`.
//
// @title           routerd API
// @version         1.0
// @description     Routes prompts to a small or a large text-generation backend and reports latency statistics.
//
// @contact.name   routerd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
