package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"naijayield/internal/analytics"
	"naijayield/internal/domain"
	"naijayield/internal/repository"
	"naijayield/internal/service"
	"naijayield/internal/transport/auth"
)

type ProfileReader interface {
	HouseholdProfile(ctx context.Context, householdID string) (*service.HouseholdProfile, error)
	HouseholdInclusion(ctx context.Context, householdID string) (*service.HouseholdInclusion, error)
	Households(ctx context.Context) ([]string, error)
}

type DashboardReader interface {
	Overview(ctx context.Context, f repository.LoanFilter) (*analytics.Overview, error)
}

type PortfolioExporter interface {
	StartPortfolioExport(
		ctx context.Context,
		selected []string,
		filter repository.LoanFilter,
		userID string,
	) (string, error)
}

type ExportListService interface {
	GetExports(ctx context.Context, userID string) ([]service.ExportView, error)
	GetExport(ctx context.Context, exportID, userID string) (*service.ExportView, error)
}

type AuthService interface {
	auth.Authenticator
	LoginURL() (url, state string, err error)
	Callback(ctx context.Context, code string) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type WebSocketHandler interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request, userID string)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Profiles   ProfileReader
	Dashboard  DashboardReader
	Portfolio  PortfolioExporter
	ExportList ExportListService
	Auth       AuthService
	WebSocket  WebSocketHandler
	DB         Pinger

	// Files serves locally stored exports. Nil when exports go to S3.
	Files http.HandlerFunc
}

type Options struct {
	AllowedOrigins []string
	// AfterLoginURL receives the session token after a successful login.
	// Empty means the callback answers with JSON.
	AfterLoginURL string
	FilesPrefix   string
	SecureCookies bool
}

type Handler struct {
	profiles   ProfileReader
	dashboard  DashboardReader
	portfolio  PortfolioExporter
	exportList ExportListService
	auth       AuthService
	ws         WebSocketHandler
	db         Pinger
	files      http.HandlerFunc

	opts Options
}

func NewHandler(s Services, opts Options) *Handler {
	if opts.FilesPrefix == "" {
		opts.FilesPrefix = "/files"
	}
	return &Handler{
		profiles:   s.Profiles,
		dashboard:  s.Dashboard,
		portfolio:  s.Portfolio,
		exportList: s.ExportList,
		auth:       s.Auth,
		ws:         s.WebSocket,
		db:         s.DB,
		files:      s.Files,
		opts:       opts,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	origins := h.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	r.Get("/health", h.health)

	r.Get("/auth/login", h.login)
	r.Get("/auth/callback", h.callback)

	if h.files != nil {
		r.Get(h.opts.FilesPrefix+"/{file}", h.files)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(h.auth, ErrorUnauthorized))

		r.Get("/ws", h.websocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Post("/auth/logout", h.logout)
			r.Get("/me", h.me)

			r.Get("/households", h.listHouseholds)
			r.Get("/households/{id}/profile", h.householdProfile)
			r.Get("/households/{id}/inclusion", h.householdInclusion)
			r.Get("/dashboard", h.dashboardOverview)

			r.Get("/codes", h.listCodes)
			r.Get("/codes/{table}/{code}", h.lookupCode)
			r.Post("/calculator/dti", h.debtToIncome)

			r.Route("/export", func(r chi.Router) {
				r.Get("/", h.listExports)
				r.Get("/{export_id}", h.getExport)
				r.Post("/portfolio", h.exportPortfolio)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logError("health", err)
			ErrorUnavailable(w, "database unavailable")
			return
		}
	}
	Success(w, "ok", map[string]string{"status": "ok"})
}

func (h *Handler) websocket(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}
	if h.ws == nil {
		ErrorUnavailable(w, "websocket disabled")
		return
	}
	h.ws.HandleWebSocket(w, r, userID)
}
