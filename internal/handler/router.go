package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyrx/studio-backend/internal/config"
	chatHandler "github.com/hyrx/studio-backend/internal/handler/chat"
	contactHandler "github.com/hyrx/studio-backend/internal/handler/contact"
	voiceHandler "github.com/hyrx/studio-backend/internal/handler/voice"
	"github.com/hyrx/studio-backend/internal/service/assistant"
	"github.com/hyrx/studio-backend/internal/service/completion"
	contactService "github.com/hyrx/studio-backend/internal/service/contact"
	"github.com/hyrx/studio-backend/internal/speech"
	"github.com/hyrx/studio-backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg *config.Config, completionSvc *completion.Service, assistantSvc *assistant.Service, pipeline *contactService.Pipeline, capability speech.Capability) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.Server.AllowedOrigins))

	limiter := NewRateLimiter(cfg.Server.RatePerMinute)

	r.Route("/api", func(api chi.Router) {
		api.Use(limiter.Middleware)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		var completer chatHandler.Completer
		if completionSvc != nil {
			completer = completionSvc
		}
		chatHandler.New(completer, assistantSvc).RegisterRoutes(api)
		contactHandler.New(pipeline).RegisterRoutes(api)
		voiceHandler.New(capability, cfg.Speech).RegisterRoutes(api)
	})

	return r
}
