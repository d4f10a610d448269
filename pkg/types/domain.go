package types

// Model represents a model file discovered on disk.
type Model struct {
	// Stable identifier for the model (file name).
	// example: distilgpt2.Q8_0.gguf
	ID string `json:"id" example:"distilgpt2.Q8_0.gguf"`
	// Human-friendly name.
	// example: distilgpt2.Q8_0.gguf
	Name string `json:"name" example:"distilgpt2.Q8_0.gguf"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/distilgpt2.Q8_0.gguf
	Path string `json:"path" example:"/home/user/models/distilgpt2.Q8_0.gguf"`
}

// Kind identifies one of the two backends.
type Kind string

const (
	KindSmall Kind = "small"
	KindLarge Kind = "large"
)

// Kinds lists the backends in routing order.
var Kinds = []Kind{KindSmall, KindLarge}

func (k Kind) String() string { return string(k) }
