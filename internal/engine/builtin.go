package engine

// LlamaBuilt reports whether in-process llama support is compiled in.
func LlamaBuilt() bool { return llamaBuilt }
