package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/jwt"
)

// RouterConfig carries what the router needs besides the handlers.
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	JWTService     jwt.Service
	Permissions    middleware.PermissionChecker

	// Redis backs Idempotency-Key handling. Nil disables it.
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration

	// AttendanceLimiter throttles check-in and check-out. Nil disables it.
	AttendanceLimiter *middleware.ActorRateLimiter
}

type Handlers struct {
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Calendar   CalendarHandler
	Holiday    HolidayHandler
	Stream     StreamHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.HeaderIdempotencyKey, middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, middleware.HeaderIdempotentReplayed},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestContext)

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	idempotent := middleware.Idempotency(cfg.Redis, cfg.IdempotencyTTL)
	can := func(p user.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(cfg.Permissions, p)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// The stream authenticates with its own single-use token.
		r.Get("/stream", h.Stream.Stream)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(cfg.JWTService))

			r.Post("/stream/token", h.Stream.Token)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceCreate))
					if cfg.AttendanceLimiter != nil {
						r.Use(middleware.RateLimitByActor(cfg.AttendanceLimiter))
					}
					r.Use(idempotent)
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
				})
				r.With(can(user.PermissionAttendanceViewOwn)).Get("/", h.Attendance.List)
				r.With(can(user.PermissionAttendanceViewOwn)).Get("/stats", h.Attendance.Stats)
				r.With(can(user.PermissionAttendanceManage)).Put("/{id}", h.Attendance.Update)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.With(can(user.PermissionLeaveCreate), idempotent).Post("/", h.Leave.Apply)
				r.With(can(user.PermissionLeaveViewOwn)).Get("/", h.Leave.List)
				r.Route("/{id}", func(r chi.Router) {
					r.With(can(user.PermissionLeaveViewOwn)).Get("/", h.Leave.Get)
					r.With(can(user.PermissionLeaveApprove)).Post("/approve", h.Leave.Approve)
					r.With(can(user.PermissionLeaveApprove)).Post("/reject", h.Leave.Reject)
					r.With(can(user.PermissionLeaveCreate)).Post("/cancel", h.Leave.Cancel)
				})
			})

			r.Route("/leave-balances", func(r chi.Router) {
				r.With(can(user.PermissionLeaveViewOwn)).Get("/", h.Leave.Balance)
				r.With(can(user.PermissionLeaveManageAllocation)).Put("/allocation", h.Leave.UpdateAllocation)
			})

			r.With(can(user.PermissionCalendarViewOwn)).Get("/calendar/monthly", h.Calendar.Monthly)

			r.Route("/holidays", func(r chi.Router) {
				r.With(can(user.PermissionHolidayView)).Get("/", h.Holiday.List)
				r.With(can(user.PermissionHolidayView)).Get("/{id}", h.Holiday.Get)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionHolidayManage))
					r.Post("/", h.Holiday.Create)
					r.Put("/{id}", h.Holiday.Update)
					r.Delete("/{id}", h.Holiday.Delete)
				})
			})
		})
	})

	return r
}
