package backend

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"routerd/internal/engine"
)

// Built-in template names.
const (
	TemplateQAPrimer            = "qa_primer"
	TemplateConciseEncyclopedia = "concise_encyclopedia"
)

// DefaultTemplates are registered unless configuration overrides them.
var DefaultTemplates = map[string]string{
	TemplateQAPrimer: "Q: What is Apple?\n" +
		"A: Apple is a large technology company known for the iPhone and the Mac.\n\n" +
		"Q: What is Google?\n" +
		"A: Google is a major internet company best known for Search and Android.\n\n" +
		"Q: {{question .Prompt}}\n" +
		"A:",
	TemplateConciseEncyclopedia: "You are a concise encyclopedia.\n" +
		"Answer the question accurately in 2–4 sentences.\n\n" +
		"Question: {{.Prompt}}\n" +
		"Answer:",
}

var templateFuncs = template.FuncMap{
	"trim": strings.TrimSpace,
	// question normalizes a prompt to end in exactly one '?'.
	"question": func(s string) string {
		return strings.TrimRight(strings.TrimSpace(s), "?") + "?"
	},
}

// Template renders a user prompt into model input.
type Template struct {
	name string
	t    *template.Template
}

// ParseTemplate compiles text. Templates see {{.Prompt}} and the helpers
// trim and question.
func ParseTemplate(name, text string) (*Template, error) {
	t, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}
	return &Template{name: name, t: t}, nil
}

// Name returns the template's registered name.
func (t *Template) Name() string { return t.name }

// Render applies the template to prompt.
func (t *Template) Render(prompt string) (string, error) {
	var b strings.Builder
	if err := t.t.Execute(&b, struct{ Prompt string }{Prompt: prompt}); err != nil {
		return "", fmt.Errorf("render template %q: %w", t.name, err)
	}
	return b.String(), nil
}

// Templates is a named set of compiled templates.
type Templates map[string]*Template

// CompileTemplates compiles DefaultTemplates overlaid with overrides.
func CompileTemplates(overrides map[string]string) (Templates, error) {
	src := make(map[string]string, len(DefaultTemplates)+len(overrides))
	for k, v := range DefaultTemplates {
		src[k] = v
	}
	for k, v := range overrides {
		src[k] = v
	}
	out := make(Templates, len(src))
	for name, text := range src {
		t, err := ParseTemplate(name, text)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

// Lookup returns the named template or an error listing known names.
func (ts Templates) Lookup(name string) (*Template, error) {
	if t, ok := ts[name]; ok {
		return t, nil
	}
	names := make([]string, 0, len(ts))
	for k := range ts {
		names = append(names, k)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown template %q (known: %s)", name, strings.Join(names, ", "))
}

// DefaultSeed keeps generation reproducible across restarts.
const DefaultSeed = 42

// Default token caps per backend.
const (
	DefaultSmallMaxNewTokensCap = 48
	DefaultLargeMaxNewTokensCap = 200
)

// DefaultSmallDecoding is the causal-continuation policy: beam search with
// strong repetition control, continuation only.
func DefaultSmallDecoding() engine.Decoding {
	return engine.Decoding{
		DoSample:          false,
		NumBeams:          5,
		EarlyStopping:     true,
		NoRepeatNgramSize: 3,
		RepetitionPenalty: 1.5,
		EOSAsPad:          true,
		ReturnFullText:    false,
		Seed:              DefaultSeed,
	}
}

// DefaultLargeDecoding is the instruction-following policy.
func DefaultLargeDecoding() engine.Decoding {
	return engine.Decoding{
		DoSample:      false,
		NumBeams:      4,
		EarlyStopping: true,
		Seed:          DefaultSeed,
	}
}
