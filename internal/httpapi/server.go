// Package httpapi binds the dialog engine to the Africa's Talking USSD
// callback contract: a form-encoded POST in, a plain-text CON/END body out.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/edubotswana/edubot/internal/engine"
	"github.com/edubotswana/edubot/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dialog is the engine surface the transport needs.
type Dialog interface {
	Handle(ctx context.Context, ex engine.Exchange) string
}

// Server binds the dialog engine to HTTP.
type Server struct {
	dialog Dialog
	logger *slog.Logger
}

type Option func(*Server)

// WithLogger configures a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler. A nil gatherer disables the metrics
// endpoint.
func NewHandler(dialog Dialog, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	s := &Server{
		dialog: dialog,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/ussd/callback", s.ussdCallback)
	// Some gateway configurations post to the root path instead.
	r.Post("/", s.ussdCallback)
	r.Get("/health", s.health)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ussdCallback handles one exchange. The gateway expects a 200 with a
// plain-text body on every request; engine-internal failures already resolve
// to worded CON/END messages.
func (s *Server) ussdCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	ex := engine.Exchange{
		SessionID:   r.PostFormValue("sessionId"),
		PhoneNumber: r.PostFormValue("phoneNumber"),
		ServiceCode: r.PostFormValue("serviceCode"),
		Text:        r.PostFormValue("text"),
	}
	if ex.SessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	response := s.dialog.Handle(r.Context(), ex)

	s.logger.Debug("ussd exchange",
		"session", ex.SessionID, "input", ex.Text, "terminal", len(response) >= 4 && response[:4] == "END ")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(response)); err != nil {
		s.logger.Warn("response write failed", "session", ex.SessionID, "err", err)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "healthy"}); err != nil {
		s.logger.Warn("health encode failed", "err", err)
	}
}
