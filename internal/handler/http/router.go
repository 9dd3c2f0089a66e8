package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/way-19/consulting19/internal/auth"
	"github.com/way-19/consulting19/internal/service"
	"github.com/way-19/consulting19/pkg/health"
	"github.com/way-19/consulting19/pkg/middleware"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Orders     *service.OrderService
	Comparison *service.ComparisonService
	Content    *service.ContentService
	Languages  *service.LanguageService
	Consent    *service.ConsentService
	Auth       *service.AuthService
	Leads      *service.LeadService
}

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
	SecureCookie   bool

	// RateLimitRPS and RateLimitBurst bound the write endpoints that reach
	// external systems (sign-in, sign-up, submit, contact) per client IP.
	// A zero RPS disables the limit.
	RateLimitRPS   float64
	RateLimitBurst int

	// ContentMaxAge is the Cache-Control max-age of static content.
	ContentMaxAge int

	PprofEnabled bool
	PprofCIDRs   []string
}

// NewRouter creates a chi router with all routes registered. ctx bounds the
// background work of the rate limiter. metrics and metricsHandler may be nil.
func NewRouter(
	ctx context.Context,
	svcs Services,
	tokens *auth.VisitorTokens,
	healthHandler *health.Handler,
	metrics *middleware.HTTPMetrics,
	metricsHandler http.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	if metrics != nil {
		r.Use(metrics.Handler)
	}
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", metricsHandler)

	// Pprof debug endpoints with IP allowlist.
	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	limited := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRPS > 0 {
		limited = middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	wizardHandler := NewWizardHandler(svcs.Orders, svcs.Languages, logger)
	comparisonHandler := NewComparisonHandler(svcs.Comparison, logger)
	contentHandler := NewContentHandler(svcs.Content, svcs.Languages, logger)
	preferenceHandler := NewPreferenceHandler(svcs.Languages, svcs.Consent, logger)
	accountHandler := NewAccountHandler(svcs.Auth, svcs.Leads, svcs.Languages, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(VisitorIdentity(tokens, cfg.SecureCookie, logger))
		r.Use(middleware.RequestLogger(logger))

		// Static content, identical for every visitor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.ContentMaxAge))

			r.Get("/services", contentHandler.ListServices)
			r.Get("/countries", contentHandler.ListCountries)
			r.Get("/countries/{code}", contentHandler.GetCountry)
			r.Get("/countries/{code}/packages", contentHandler.ListCountryPackages)
			r.Get("/blog", contentHandler.ListBlog)
			r.Get("/blog/{slug}", contentHandler.GetBlogPost)
		})

		// Per-visitor state.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Get("/pages/{page}", contentHandler.GetPage)

			r.Get("/language", preferenceHandler.GetLanguage)
			r.Put("/language", preferenceHandler.SetLanguage)
			r.Get("/translations", preferenceHandler.Translate)

			r.Route("/consent", func(r chi.Router) {
				r.Get("/", preferenceHandler.GetConsent)
				r.Put("/", preferenceHandler.SetConsent)
				r.Post("/accept-all", preferenceHandler.AcceptAllConsent)
				r.Post("/reject-all", preferenceHandler.RejectAllConsent)
				r.Post("/{category}/toggle", preferenceHandler.ToggleConsent)
			})

			r.Route("/wizard", func(r chi.Router) {
				r.Post("/", wizardHandler.Start)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", wizardHandler.Get)
					r.Patch("/fields", wizardHandler.UpdateFields)
					r.Post("/services/{serviceID}/toggle", wizardHandler.ToggleService)
					r.Post("/next", wizardHandler.Next)
					r.Post("/previous", wizardHandler.Previous)
					r.Post("/steps/{step}", wizardHandler.GoTo)
					r.With(limited).Post("/submit", wizardHandler.Submit)
				})
			})

			r.Route("/comparison/{country}", func(r chi.Router) {
				r.Get("/", comparisonHandler.Get)
				r.Post("/{packageID}/toggle", comparisonHandler.Toggle)
				r.Post("/view", comparisonHandler.EnterView)
				r.Delete("/view", comparisonHandler.ExitView)
			})

			r.With(limited).Post("/auth/sign-in", accountHandler.SignIn)
			r.With(limited).Post("/auth/sign-up", accountHandler.SignUp)
			r.With(limited).Post("/contact", accountHandler.Contact)
		})
	})

	return r
}
