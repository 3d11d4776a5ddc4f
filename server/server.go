// Package server exposes the stateless web variant of the enquiry bot:
// the client round-trips the whole conversation state on every request,
// so nothing is held between calls.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	contractx "github.com/bairolabs/bairo/bot/contract"
	flowx "github.com/bairolabs/bairo/bot/flow"
)

// chatRequest is the wire shape the web client sends; the field names
// are part of the client contract and must stay stable.
type chatRequest struct {
	Message     string            `json:"message"`
	CurrentStep string            `json:"currentStep"`
	UserData    contractx.Inquiry `json:"userData"`
}

type chatResponse struct {
	Message  string            `json:"message"`
	NextStep string            `json:"next_step"`
	UserData contractx.Inquiry `json:"userData"`
}

// Handler serves the chat and admin endpoints.
type Handler struct {
	flow  *flowx.Flow
	store contractx.InquiryStore
}

// NewHandler builds the handler over a flow and its store.
func NewHandler(flow *flowx.Flow, store contractx.InquiryStore) *Handler {
	return &Handler{flow: flow, store: store}
}

// Router mounts all routes on a fresh chi router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Post("/chat", h.handleChat)
	r.Get("/admin/inquiries", h.handleListInquiries)
	r.Get("/healthz", h.handleHealth)
	return r
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := contractx.Session{
		Step:  contractx.Step(req.CurrentStep),
		Draft: req.UserData,
	}

	res, err := h.flow.Advance(r.Context(), session, req.Message)
	if err != nil {
		// Outages are logged but the visitor still gets the flow's
		// human-readable copy and can retry.
		log.Error().Err(err).Str("step", req.CurrentStep).Msg("advance failed")
	}

	JSON(w, http.StatusOK, chatResponse{
		Message:  res.Message,
		NextStep: string(res.Next),
		UserData: res.Draft,
	})
}

func (h *Handler) handleListInquiries(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.store.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list inquiries failed")
		Error(w, http.StatusServiceUnavailable, "inquiry store unavailable")
		return
	}
	if inquiries == nil {
		inquiries = []contractx.Inquiry{}
	}
	JSON(w, http.StatusOK, map[string]any{"inquiries": inquiries})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := h.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			Error(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
