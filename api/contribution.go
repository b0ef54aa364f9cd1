package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/najihhome/rfidrag/internal/contribution"
	"github.com/najihhome/rfidrag/internal/i18n"
	"github.com/najihhome/rfidrag/internal/knowledge"
	"github.com/najihhome/rfidrag/internal/log"
)

// ContributionStore manages the contribution lifecycle.
type ContributionStore interface {
	Submit(p contribution.Payload) (string, error)
	ListPending() ([]knowledge.Item, error)
	Approve(id string) (knowledge.Item, error)
	Reject(id string) error
}

// KnowledgeStore exposes the retrieval index and its reload operation.
type KnowledgeStore interface {
	Reload(ctx context.Context) error
	Current() *knowledge.Index
}

// ContributionHandler handles contribution submission and moderation.
type ContributionHandler struct {
	store     ContributionStore
	knowledge KnowledgeStore
	logger    log.Logger
}

// NewContributionHandler creates a new contribution handler.
func NewContributionHandler(store ContributionStore, kb KnowledgeStore, logger log.Logger) *ContributionHandler {
	return &ContributionHandler{store: store, knowledge: kb, logger: logger}
}

// RegisterRoutes registers contribution routes on the given mux.
func (h *ContributionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/contributions", h.submit)
	mux.HandleFunc("GET /api/contributions", h.list)
	mux.HandleFunc("POST /api/contributions/{id}/approve", h.approve)
	mux.HandleFunc("POST /api/contributions/{id}/reject", h.reject)
}

// ContributionRequest is the request body for submitting a contribution.
type ContributionRequest struct {
	Title      string   `json:"title"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	Author     string   `json:"author"`
	Source     string   `json:"source"`
	Domain     string   `json:"domain"`
	Type       string   `json:"type"`
	Language   string   `json:"language"`
}

func (h *ContributionHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	// User-facing submissions carry user provenance unless stated.
	if strings.TrimSpace(req.Source) == "" {
		req.Source = "user"
	}
	if strings.TrimSpace(req.Domain) == "" {
		req.Domain = "rfid"
	}

	id, err := h.store.Submit(contribution.Payload{
		Title:      req.Title,
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Tags:       req.Tags,
		Author:     req.Author,
		Source:     req.Source,
		Domain:     req.Domain,
		Type:       req.Type,
		Language:   req.Language,
	})
	if err != nil {
		if errors.Is(err, contribution.ErrInvalidPayload) {
			writeError(w, http.StatusBadRequest, "invalid_contribution", "question and answer are required")
			return
		}
		h.logger.Error("failed to store contribution", "error", err)
		writeError(w, http.StatusInternalServerError, "store_failed", "could not store the contribution")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": i18n.T("contribution.received"),
		"id":      id,
	})
}

// PendingContribution is one entry of the moderation queue listing.
type PendingContribution struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	AuthorName  string    `json:"authorName"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (h *ContributionHandler) list(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" && status != knowledge.StatusPending {
		// Only the pending queue is queryable; other statuses live in
		// the approved snapshot or are gone.
		writeJSON(w, http.StatusOK, []PendingContribution{})
		return
	}

	pending, err := h.store.ListPending()
	if err != nil {
		h.logger.Error("failed to list pending contributions", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "could not list contributions")
		return
	}

	out := make([]PendingContribution, 0, len(pending))
	for _, it := range pending {
		author := it.Author
		if author == "" {
			author = i18n.T("author.anonymous")
		}
		out = append(out, PendingContribution{
			ID:          it.ID,
			Title:       it.Title,
			Question:    it.Question,
			Answer:      it.Answer,
			Category:    it.Category,
			Difficulty:  it.Difficulty,
			AuthorName:  author,
			SubmittedAt: it.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *ContributionHandler) approve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := h.store.Approve(id)
	if err != nil {
		if errors.Is(err, contribution.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "contribution not found")
			return
		}
		h.logger.Error("failed to approve contribution", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "approve_failed", "could not approve the contribution")
		return
	}

	if err := h.knowledge.Reload(r.Context()); err != nil {
		// The item is already persisted as approved; only the live
		// index is stale.
		h.logger.Error("reindex after approval failed", "id", item.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "reindex_failed", "approved, but reindexing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": i18n.T("moderation.approved"),
		"id":      item.ID,
	})
}

func (h *ContributionHandler) reject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.Reject(id); err != nil {
		h.logger.Error("failed to reject contribution", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "reject_failed", "could not reject the contribution")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": i18n.T("moderation.rejected"),
	})
}
