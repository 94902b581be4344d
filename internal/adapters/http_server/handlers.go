package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"whatsapp_reviews/internal/app"
	"whatsapp_reviews/internal/domain"
)

const listErrorMessage = "Could not connect or query database."

type Handlers struct {
	Conv *app.ConversationService
	Q    *app.QueryService
	// SideEffectTimeout bounds the sends and the insert triggered by one
	// webhook delivery. Zero means no bound.
	SideEffectTimeout time.Duration
	// ReadTimeout bounds read-only API requests.
	ReadTimeout time.Duration
}

type reviewJSON struct {
	ID            int64     `json:"id"`
	ContactNumber string    `json:"contactNumber"`
	ProductName   string    `json:"productName"`
	UserName      string    `json:"userName"`
	ProductReview string    `json:"productReview"`
	CreatedAt     time.Time `json:"createdAt"`
}

type reviewsResponse struct {
	Success bool         `json:"success"`
	Reviews []reviewJSON `json:"reviews"`
	Error   string       `json:"error,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/health", h.health)
	s.mux.Post("/webhook/whatsapp", h.webhook)

	s.mux.Group(func(r chi.Router) {
		if h.ReadTimeout > 0 {
			r.Use(Timeout(h.ReadTimeout))
		}
		r.Get("/api/reviews", h.listReviews)
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// webhook always acknowledges with 200 and an empty body so the provider
// never redelivers because of an internal failure.
func (h *Handlers) webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("route", "/webhook/whatsapp").Msg("webhook handler panicked")
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}()

	if err := r.ParseForm(); err != nil {
		log.Warn().Err(err).Msg("webhook form unparseable; treating fields as empty")
	}
	msg := domain.InboundMessage{
		SID:  r.PostForm.Get("MessageSid"),
		From: domain.SenderID(r.PostForm.Get("From")),
		Body: r.PostForm.Get("Body"),
	}
	annotate(r.Context(), msg.From, msg.SID)

	ctx := context.WithoutCancel(r.Context())
	if h.SideEffectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.SideEffectTimeout)
		defer cancel()
	}
	h.Conv.HandleInbound(ctx, msg)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.ListReviews(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list reviews failed")
		writeJSON(w, http.StatusOK, reviewsResponse{Success: false, Reviews: []reviewJSON{}, Error: listErrorMessage})
		return
	}

	out := reviewsResponse{Success: true, Reviews: make([]reviewJSON, 0, len(rs))}
	for _, rv := range rs {
		out.Reviews = append(out.Reviews, reviewJSON{
			ID:            rv.ID,
			ContactNumber: rv.ContactNumber,
			ProductName:   rv.ProductName,
			UserName:      rv.UserName,
			ProductReview: rv.ReviewText,
			CreatedAt:     rv.CreatedAt,
		})
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
