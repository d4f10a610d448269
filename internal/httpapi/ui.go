package httpapi

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"routerd/pkg/types"
)

//go:embed ui.html
var uiSource string

var uiTemplate = template.Must(template.New("ui").Parse(uiSource))

type uiData struct {
	SmallModel   string
	LargeModel   string
	Threshold    int
	PollMs       int
	DefaultToken int
}

// handleIndex serves the single-page UI with model names filled in.
func handleIndex(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := svc.Status()
		data := uiData{Threshold: st.ThresholdChars, PollMs: 1500, DefaultToken: defaultMaxNewTokens}
		for _, b := range st.Backends {
			switch types.Kind(b.Kind) {
			case types.KindSmall:
				data.SmallModel = b.Model
			case types.KindLarge:
				data.LargeModel = b.Model
			}
		}
		var buf bytes.Buffer
		if err := uiTemplate.Execute(&buf, data); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to render page")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}
