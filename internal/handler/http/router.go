package http

import (
	"log/slog"
	"os"

	"github.com/clockwise-hr/attendance-backend-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtAuth *jwtauth.JWTAuth,
	attendanceHandler AttendanceHandler,
	syncHandler SyncHandler,
	jobsHandler JobsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtAuth))
			r.Use(middleware.AuthRequired(jwtAuth))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/process", attendanceHandler.Process)
				r.Post("/finalize", attendanceHandler.Finalize)
				r.Get("/daily", attendanceHandler.Daily)

				r.Route("/report", func(r chi.Router) {
					r.Get("/daily", attendanceHandler.DailyReport)
					r.Get("/monthly", attendanceHandler.MonthlyReport)
				})
			})

			r.Route("/sync", func(r chi.Router) {
				r.Post("/run", syncHandler.Run)
			})

			r.Get("/jobs", jobsHandler.Stats)
		})
	})
	return r
}
