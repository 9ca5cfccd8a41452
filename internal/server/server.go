package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/handler"
	"github.com/jabumarket/jabumarket/internal/middleware"
	"github.com/jabumarket/jabumarket/internal/push"
	"github.com/jabumarket/jabumarket/internal/storage"
	"github.com/jabumarket/jabumarket/internal/store"
)

// Config holds everything the server needs beyond the database handle.
type Config struct {
	TokenSecret     string
	SecureCookies   bool
	Storage         storage.Config
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
}

type Server struct {
	db          *sql.DB
	authH       *handler.AuthHandler
	listingH    *handler.ListingHandler
	vendorH     *handler.VendorHandler
	materialH   *handler.MaterialHandler
	practiceH   *handler.PracticeHandler
	studyH      *handler.StudyHandler
	qaH         *handler.QAHandler
	adminH      *handler.AdminHandler
	pushH       *handler.PushHandler
	authMw      *middleware.Authenticator
	sessions    *store.SessionStore
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	vendors := store.NewVendorStore(db)
	listings := store.NewListingStore(db)
	materials := store.NewMaterialStore(db)
	practice := store.NewPracticeStore(db)
	qa := store.NewQAStore(db)
	pushSubs := store.NewPushStore(db)

	files := storage.New(cfg.Storage)
	notifier := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber, pushSubs, logger)

	return &Server{
		db:        db,
		authH:     handler.NewAuthHandler(users, sessions, vendors, cfg.SecureCookies, logger),
		listingH:  handler.NewListingHandler(listings, vendors, logger),
		vendorH:   handler.NewVendorHandler(vendors, logger),
		materialH: handler.NewMaterialHandler(materials, files, logger),
		practiceH: handler.NewPracticeHandler(practice, logger),
		studyH:    handler.NewStudyHandler(qa, logger),
		qaH:       handler.NewQAHandler(qa, logger),
		adminH:    handler.NewAdminHandler(listings, vendors, materials, users, notifier, logger),
		pushH:     handler.NewPushHandler(pushSubs, notifier, logger),
		authMw: &middleware.Authenticator{
			Sessions: sessions,
			Users:    users,
			Vendors:  vendors,
			Tokens:   auth.NewTokenVerifier(cfg.TokenSecret),
		},
		sessions:    sessions,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessions
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	limited := middleware.RateLimit(s.rateLimiter, 10, time.Minute)

	// Account
	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(s.authH.Register)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(s.authH.Login)))
	mux.HandleFunc("GET /health", s.healthHandler)

	// Public browse endpoints. Optional auth lets owners and admins widen
	// their own views.
	mux.Handle("GET /api/listings", s.authMw.Optional(http.HandlerFunc(s.listingH.List)))
	mux.Handle("GET /api/listings/{id}", s.authMw.Optional(http.HandlerFunc(s.listingH.Get)))
	mux.HandleFunc("GET /api/listings/categories", s.listingH.Categories)
	mux.Handle("GET /api/vendors", s.authMw.Optional(http.HandlerFunc(s.vendorH.Directory)))
	mux.Handle("GET /api/vendors/{id}", s.authMw.Optional(http.HandlerFunc(s.vendorH.Get)))
	mux.Handle("GET /api/materials", s.authMw.Optional(http.HandlerFunc(s.materialH.List)))
	mux.Handle("GET /api/materials/{id}", s.authMw.Optional(http.HandlerFunc(s.materialH.Get)))
	mux.Handle("GET /api/materials/{id}/download", s.authMw.Optional(http.HandlerFunc(s.materialH.Download)))
	mux.HandleFunc("GET /api/practice/sets", s.practiceH.ListSets)
	mux.HandleFunc("GET /api/practice/sets/{id}", s.practiceH.GetSet)
	mux.HandleFunc("GET /api/qa/questions", s.qaH.ListQuestions)
	mux.HandleFunc("GET /api/qa/questions/{id}", s.qaH.GetQuestion)
	mux.HandleFunc("GET /api/study/leaderboard", s.studyH.Leaderboard)
	mux.HandleFunc("POST /api/study/gpa", s.studyH.GPA)
	mux.HandleFunc("POST /api/study/gpa/required", s.studyH.RequiredNext)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDPublicKey)

	// Authenticated routes
	protected := http.NewServeMux()
	protected.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	protected.HandleFunc("GET /api/me", s.authH.Me)
	protected.HandleFunc("GET /api/me/listings", s.listingH.Mine)
	protected.HandleFunc("GET /api/me/materials", s.materialH.Mine)
	protected.HandleFunc("POST /api/listings", s.listingH.Create)
	protected.HandleFunc("PUT /api/listings/{id}", s.listingH.Update)
	protected.HandleFunc("POST /api/listings/{id}/status", s.listingH.SetStatus)
	protected.HandleFunc("DELETE /api/listings/{id}", s.listingH.Delete)
	protected.HandleFunc("POST /api/vendors", s.vendorH.Create)
	protected.HandleFunc("PUT /api/vendors/me", s.vendorH.Update)
	protected.HandleFunc("POST /api/vendors/me/verification", s.vendorH.RequestVerification)
	protected.Handle("POST /api/materials", limited(http.HandlerFunc(s.materialH.Upload)))
	protected.HandleFunc("DELETE /api/materials/{id}", s.materialH.Delete)
	protected.HandleFunc("POST /api/practice/sets/{id}/attempts", s.practiceH.Submit)
	protected.HandleFunc("GET /api/practice/attempts", s.practiceH.History)
	protected.HandleFunc("GET /api/practice/attempts/{id}/review", s.practiceH.Review)
	protected.HandleFunc("POST /api/practice/questions/{id}/flag", s.practiceH.ToggleFlag)
	protected.HandleFunc("POST /api/qa/questions", s.qaH.CreateQuestion)
	protected.HandleFunc("POST /api/qa/questions/{id}/answers", s.qaH.CreateAnswer)
	protected.HandleFunc("POST /api/qa/questions/{id}/upvote", s.qaH.UpvoteQuestion)
	protected.HandleFunc("POST /api/qa/answers/{id}/upvote", s.qaH.UpvoteAnswer)
	protected.HandleFunc("POST /api/qa/answers/{id}/accept", s.qaH.AcceptAnswer)
	protected.HandleFunc("POST /api/push/subscriptions", s.pushH.Subscribe)
	protected.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
	protected.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)

	// Admin routes
	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/admin/vendors/pending", s.adminH.PendingVendors)
	admin.HandleFunc("POST /api/admin/vendors/{id}/verification", s.adminH.DecideVerification)
	admin.HandleFunc("GET /api/admin/materials/pending", s.adminH.PendingMaterials)
	admin.HandleFunc("POST /api/admin/materials/{id}/decision", s.adminH.DecideMaterial)
	admin.HandleFunc("POST /api/admin/materials/{id}/badges", s.adminH.SetMaterialBadges)
	admin.HandleFunc("POST /api/admin/listings/{id}/takedown", s.adminH.TakeDownListing)
	admin.HandleFunc("GET /api/admin/listings/export", s.adminH.ExportListingsCSV)
	admin.HandleFunc("POST /api/admin/users/{id}/grant", s.adminH.GrantAdmin)
	admin.HandleFunc("POST /api/admin/practice/sets", s.practiceH.CreateSet)

	protected.Handle("/api/admin/", middleware.RequireAdmin(admin))
	mux.Handle("/", s.authMw.RequireAuth(protected))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
