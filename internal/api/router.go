package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/erazemk/stockledger/internal/access"
	"github.com/erazemk/stockledger/internal/store"
)

// Config holds the dependencies of the API router.
type Config struct {
	Store       *store.Store
	JWTSecret   string
	CORSOrigins []string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	st := cfg.Store

	authHandler := &AuthHandler{Store: st, JWTSecret: cfg.JWTSecret, Now: time.Now}
	commonHandler := &CommonHandler{Store: st}
	purchasesHandler := &PurchasesHandler{Store: st}
	movementsHandler := &MovementsHandler{Store: st}
	transfersHandler := &TransfersHandler{Store: st}
	assignmentsHandler := &AssignmentsHandler{Store: st}
	dashboardHandler := &DashboardHandler{Store: st}
	usersHandler := &UsersHandler{Store: st}
	logsHandler := &LogsHandler{Store: st}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(RequestLogger(st))
		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, http.StatusNotFound, "not found")
		})
		api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		})

		// Public.
		api.Post("/auth/login", authHandler.Login)
		api.Get("/health", commonHandler.Health)

		api.Group(func(p chi.Router) {
			p.Use(AuthMiddleware(cfg.JWTSecret, st))
			can := func(op access.Operation) chi.Router { return p.With(RequireCapability(op)) }

			p.Post("/auth/logout", authHandler.Logout)
			p.Put("/auth/password", authHandler.ChangePassword)

			can(access.ReferenceRead).Get("/common/sites", commonHandler.ListSites)
			can(access.ReferenceWrite).Post("/common/sites", commonHandler.CreateSite)
			can(access.ReferenceRead).Get("/common/equipment-types", commonHandler.ListEquipmentTypes)
			can(access.ReferenceWrite).Post("/common/equipment-types", commonHandler.CreateEquipmentType)
			can(access.ReferenceRead).Get("/common/equipment-types/{id}/image", commonHandler.GetImage)
			can(access.ReferenceWrite).Put("/common/equipment-types/{id}/image", commonHandler.UploadImage)

			can(access.PurchaseCreate).Post("/purchases", purchasesHandler.Create)
			can(access.PurchaseList).Get("/purchases", purchasesHandler.List)
			can(access.MovementList).Get("/movements", movementsHandler.List)

			can(access.TransferCreate).Post("/transfers", transfersHandler.Create)
			can(access.TransferList).Get("/transfers", transfersHandler.List)
			can(access.TransferList).Get("/transfers/{id}", transfersHandler.Get)

			can(access.AssignmentCreate).Post("/assignments", assignmentsHandler.Create)
			can(access.AssignmentList).Get("/assignments", assignmentsHandler.List)

			can(access.BalanceView).Get("/dashboard/metrics", dashboardHandler.Metrics)

			can(access.UserManage).Get("/users", usersHandler.List)
			can(access.UserManage).Post("/users", usersHandler.Create)
			can(access.UserManage).Get("/users/{id}", usersHandler.Get)
			can(access.UserManage).Put("/users/{id}", usersHandler.Update)
			can(access.UserManage).Put("/users/{id}/password", usersHandler.ResetPassword)
			can(access.UserManage).Delete("/users/{id}", usersHandler.Delete)
			can(access.UserManage).Get("/logs", logsHandler.List)
		})
	})

	return r
}
