package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"routerd/pkg/types"
)

// chatBody distinguishes absent fields from zero values.
type chatBody struct {
	Prompt       *string `json:"prompt"`
	MaxNewTokens *int    `json:"max_new_tokens"`
	Mode         *string `json:"mode"`
}

// requestError is a client error detected while decoding /chat.
type requestError struct {
	status int
	reason string
	msg    string
}

func (e *requestError) Error() string { return e.msg }

// decodeChatRequest validates the envelope of a /chat request and applies
// defaults for omitted fields.
func decodeChatRequest(w http.ResponseWriter, r *http.Request) (types.ChatRequest, error) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return types.ChatRequest{}, &requestError{http.StatusUnsupportedMediaType, "content_type", "Content-Type must be application/json"}
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body chatBody
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		var tooBig *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &tooBig):
			return types.ChatRequest{}, &requestError{http.StatusBadRequest, "too_large", fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit)}
		case errors.As(err, &typeErr):
			return types.ChatRequest{}, &requestError{http.StatusUnprocessableEntity, "invalid_field", fmt.Sprintf("%s must be %s", typeErr.Field, typeErr.Type)}
		default:
			return types.ChatRequest{}, &requestError{http.StatusBadRequest, "invalid_json", "invalid JSON body"}
		}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return types.ChatRequest{}, &requestError{http.StatusBadRequest, "invalid_json", "invalid JSON body: trailing data"}
	}
	if body.Prompt == nil {
		return types.ChatRequest{}, &requestError{http.StatusUnprocessableEntity, "missing_prompt", "prompt is required"}
	}
	req := types.ChatRequest{Prompt: *body.Prompt, MaxNewTokens: defaultMaxNewTokens, Mode: "auto"}
	if body.MaxNewTokens != nil {
		req.MaxNewTokens = *body.MaxNewTokens
	}
	if body.Mode != nil {
		req.Mode = *body.Mode
	}
	return req, nil
}

// handleChat godoc
// @Summary      Generate an answer
// @Description  Routes the prompt to the small or large backend, waits for a free slot and returns the generated text.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      types.ChatRequest  true  "Chat request"
// @Success      200      {object}  types.ChatResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      422      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /chat [post]
func handleChat(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lg := newChatLog(r)
		req, err := decodeChatRequest(w, r)
		if err != nil {
			re := err.(*requestError)
			incrementRejected(re.reason)
			writeJSONError(w, re.status, re.msg)
			lg.end(re.status, "", "", err)
			return
		}
		lg.begin(req.Mode, req.MaxNewTokens, req.Prompt)

		// Join server base context with request context so shutdown abandons
		// requests still waiting for admission.
		ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
		defer cancel()
		if chatTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, chatTimeout)
			defer tcancel()
		}

		resp, err := svc.Chat(ctx, req)
		if err != nil {
			// Client went away or server is shutting down: nobody to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				lg.end(499, "", "", err)
				return
			}
			status := statusForError(err)
			if status == http.StatusUnprocessableEntity {
				incrementRejected("validation")
			}
			writeJSONError(w, status, err.Error())
			lg.end(status, "", "", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		lg.text(resp.Text)
		lg.end(http.StatusOK, resp.ModelUsed, resp.RoutedReason, nil)
	}
}
