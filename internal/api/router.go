package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/potluck-app/potluck/internal/category"
	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/internal/guest"
	"github.com/potluck-app/potluck/internal/item"
	"github.com/potluck-app/potluck/internal/realtime"
	mw "github.com/potluck-app/potluck/pkg/middleware"
)

// NewRouter wires every feature against the database and realtime hub and
// returns the assembled HTTP handler.
func NewRouter(db *sql.DB, hub *realtime.Hub) http.Handler {
	// Dinner feature
	dinnerRepo := dinner.NewRepository(db)
	dinnerService := dinner.NewService(dinnerRepo)

	// Guest feature
	guestRepo := guest.NewRepository(db)
	guestService := guest.NewService(guestRepo, hub)
	guestHandler := guest.NewHandler(guestService, dinnerService)

	dinnerHandler := dinner.NewHandler(dinnerService, guestService)

	// Category feature
	categoryRepo := category.NewRepository(db)
	categoryService := category.NewService(categoryRepo, hub)
	categoryHandler := category.NewHandler(categoryService, dinnerService, guestService)

	// Item feature
	itemRepo := item.NewRepository(db)
	itemService := item.NewService(itemRepo, hub)
	itemHandler := item.NewHandler(itemService, dinnerService, guestService)

	// Realtime feature
	realtimeHandler := realtime.NewHandler(hub, dinnerService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/dinners", dinnerHandler.Create)

		r.Route("/dinners/{shareCode}", func(r chi.Router) {
			r.Use(mw.Session)

			r.Get("/", dinnerHandler.Get)
			r.Put("/", dinnerHandler.Update)
			r.Get("/ws", realtimeHandler.Serve)

			r.Mount("/guests", guestHandler.Routes())
			r.Mount("/categories", categoryHandler.Routes())
			r.Mount("/items", itemHandler.Routes())
		})
	})

	return r
}
