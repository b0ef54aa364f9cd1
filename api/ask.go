package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/najihhome/rfidrag/internal/log"
	"github.com/najihhome/rfidrag/internal/router"
)

// MaxQuestionLength bounds the question body.
const MaxQuestionLength = 2000

// Asker answers questions.
type Asker interface {
	Ask(ctx context.Context, question string, useGenerator bool) (router.Answer, error)
}

// AskHandler handles the question-answering endpoint.
type AskHandler struct {
	router Asker
	logger log.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(router Asker, logger log.Logger) *AskHandler {
	return &AskHandler{router: router, logger: logger}
}

// RegisterRoutes registers the ask route on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.ask)
}

// AskRequest is the request body for asking a question.
type AskRequest struct {
	Question     string `json:"question"`
	UseGenerator bool   `json:"use_generator"`
}

func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if len(question) > MaxQuestionLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is too long")
		return
	}

	answer, err := h.router.Ask(r.Context(), question, req.UseGenerator)
	if err != nil {
		h.logger.Error("failed to answer question", "error", err)
		writeError(w, http.StatusInternalServerError, "answer_failed", "could not answer the question")
		return
	}

	writeJSON(w, http.StatusOK, answer)
}
