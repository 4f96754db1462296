package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/config"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/kafka"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/rbac"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/repository/memory"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-leave-ledger/internal/service/attendance"
	auditService "github.com/cmlabs-hris/hris-leave-ledger/internal/service/audit"
	calendarService "github.com/cmlabs-hris/hris-leave-ledger/internal/service/calendar"
	holidayService "github.com/cmlabs-hris/hris-leave-ledger/internal/service/holiday"
	leaveService "github.com/cmlabs-hris/hris-leave-ledger/internal/service/leave"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	tx          database.Transactor
	attendances attendance.AttendanceRepository
	leaves      leave.ApplicationRepository
	balances    leave.BalanceRepository
	holidays    holiday.HolidayRepository
	auditLogs   audit.Repository
	close       func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.App.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-leave-ledger"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	enforcer, err := rbac.NewEnforcer(user.RolePermissions)
	if err != nil {
		return err
	}
	hub := sse.NewHub()

	recorder := auditService.NewRecorder(repos.auditLogs)
	holidaySvc := holidayService.NewHolidayService(repos.tx, repos.holidays, recorder)
	attendanceSvc := attendanceService.NewAttendanceService(repos.tx, repos.attendances, holidaySvc, recorder, attendanceService.Config{
		ExpectedCheckIn:  cfg.Attendance.ExpectedCheckIn,
		ExpectedCheckOut: cfg.Attendance.ExpectedCheckOut,
	})
	ledger := leaveService.NewLedger(repos.balances, cfg.Leave.Allocations)
	leaveSvc := leaveService.NewLeaveService(repos.tx, repos.leaves, ledger, recorder, hub, leaveService.Config{
		OverdrawRequiresFlag: cfg.Leave.OverdrawRequiresFlag,
	})
	calendarSvc := calendarService.NewCalendarService(repos.attendances, repos.leaves, repos.balances, holidaySvc)

	routerCfg := appHTTP.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		JWTService:     jwtService,
		Permissions:    enforcer,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
	}
	if cfg.Attendance.RatePerMinute > 0 {
		perMinute := cfg.Attendance.RatePerMinute
		routerCfg.AttendanceLimiter = middleware.NewActorRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("Redis is unreachable, idempotency keys are served without it until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		routerCfg.Redis = rdb
	}

	scheduler := cron.NewScheduler(ctx)
	if len(cfg.Kafka.Brokers) > 0 {
		writer := kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		defer writer.Close()
		relay := auditService.NewRelay(repos.auditLogs, kafka.NewAuditPublisher(writer), 0)
		cron.NewAuditJobs(relay, cfg.Kafka.RelayInterval).RegisterJobs(scheduler)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(routerCfg, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Calendar:   appHTTP.NewCalendarHandler(calendarSvc),
		Holiday:    appHTTP.NewHolidayHandler(holidaySvc),
		Stream:     appHTTP.NewStreamHandler(hub, jwtService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			tx:          store,
			attendances: store.Attendances(),
			leaves:      store.Leaves(),
			balances:    store.Balances(),
			holidays:    store.Holidays(),
			auditLogs:   store.AuditLogs(),
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &repositories{
		tx:          postgresql.NewTransactor(db),
		attendances: postgresql.NewAttendanceRepository(db),
		leaves:      postgresql.NewLeaveApplicationRepository(db),
		balances:    postgresql.NewLeaveBalanceRepository(db),
		holidays:    postgresql.NewHolidayRepository(db),
		auditLogs:   postgresql.NewAuditLogRepository(db),
		close:       db.Close,
	}, nil
}
