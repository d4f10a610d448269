//go:build !llama

package engine

// llamaBuilt is false when the binary lacks the 'llama' build tag.
var llamaBuilt = false

// NewLlama fails fast: the in-process runtime is not compiled into this
// binary. Build with -tags=llama to enable it.
func NewLlama(spec Spec) (Engine, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
