package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/migrations"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/tax"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-backend-go/internal/service/attendance"
	auditService "github.com/cmlabs-hris/payroll-backend-go/internal/service/audit"
	serviceAuth "github.com/cmlabs-hris/payroll-backend-go/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/payroll-backend-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/payroll-backend-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/payroll-backend-go/internal/service/leave"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	reportService "github.com/cmlabs-hris/payroll-backend-go/internal/service/report"
	salaryService "github.com/cmlabs-hris/payroll-backend-go/internal/service/salary"
	"github.com/go-chi/httplog/v3"
	"github.com/redis/go-redis/v9"
)

const version = "v1.0.0"

func newLogger(cfg config.AppConfig) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", strings.ToLower(cfg.Name)),
		slog.String("version", version),
		slog.String("env", cfg.Env),
	)
}

func newTaxOracle(cfg config.TaxConfig, store tax.Store) (tax.Oracle, error) {
	var oracle tax.Oracle
	switch cfg.Oracle {
	case "slab":
		oracle = tax.NewSlabOracle()
	case "command":
		cmd, err := tax.NewCommandOracle(cfg.Command, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		oracle = cmd
	default:
		return nil, fmt.Errorf("unsupported tax oracle: %s", cfg.Oracle)
	}

	if store != nil {
		oracle = tax.NewCachedOracle(oracle, store, cfg.CacheTTL)
	}
	return oracle, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(db.StdDB()); err != nil {
			log.Fatal("Error running migrations: ", err)
		}
		slog.Info("Database migrations applied")
	}

	// Redis backs token revocation and the tax cache when configured.
	var (
		redisClient *redis.Client
		taxStore    tax.Store
		revocations jwt.RevocationStore = jwt.NewMemoryRevocationStore()
	)
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("Error connecting to redis: ", err)
		}
		defer redisClient.Close()
		store := cache.NewRedisStore(redisClient)
		taxStore = store
		revocations = store
	}

	accessTTL, err := time.ParseDuration(cfg.JWT.AccessExpiration)
	if err != nil {
		log.Fatal("Invalid JWT access expiration: ", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.JWT.RefreshExpiration)
	if err != nil {
		log.Fatal("Invalid JWT refresh expiration: ", err)
	}
	secureCookie := cfg.App.Env == "production"
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessTTL, refreshTTL, revocations, secureCookie)

	transactor := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveApplicationRepo := postgresql.NewLeaveApplicationRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	recorder := auditService.NewRecorder(auditRepo)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage: ", err)
		}
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}

	emailService, err := email.NewEmailService(cfg.SMTP, cfg.App, fileStorage)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	oracle, err := newTaxOracle(cfg.Tax, taxStore)
	if err != nil {
		log.Fatal("Failed to initialize tax oracle: ", err)
	}

	policy := payroll.Policy{
		WorkingDays:        cfg.Payroll.WorkingDays,
		HoursPerDay:        cfg.Payroll.HoursPerDay,
		OvertimeMultiplier: cfg.Payroll.OvertimeMultiplier,
	}
	delivery := payrollService.NewDelivery(payslip.NewGenerator(fileStorage, cfg.App.Name), emailService, payrollRepo)
	processor := payrollService.NewProcessor(
		transactor,
		employeeRepo,
		salaryRepo,
		attendanceRepo,
		payrollRepo,
		payrollService.NewCalculator(policy, oracle),
		delivery,
	)

	authSvc := serviceAuth.NewAuthService(userRepo, refreshTokenRepo, JWTService, recorder)
	employeeSvc := employeeService.NewEmployeeService(
		transactor,
		employeeRepo,
		userRepo,
		leaveBalanceRepo,
		emailService,
		recorder,
		cfg.App.DefaultPassword,
	)
	salarySvc := salaryService.NewSalaryService(transactor, salaryRepo, employeeRepo, recorder)
	attendanceSvc := attendanceService.NewAttendanceService(transactor, attendanceRepo, employeeRepo, recorder)
	leaveSvc := leaveService.NewLeaveService(
		transactor,
		leaveBalanceRepo,
		leaveApplicationRepo,
		attendanceRepo,
		employeeRepo,
		emailService,
		recorder,
	)
	payrollSvc := payrollService.NewPayrollService(processor, delivery, payrollRepo, employeeRepo, fileStorage, recorder)
	reportSvc := reportService.NewReportService(reportRepo)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo)

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google)
	}

	router := appHTTP.NewRouter(logger, cfg.App.AllowedOrigins, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authSvc, googleService, cfg.App.FrontendURL, secureCookie),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Salary:     appHTTP.NewSalaryHandler(salarySvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
		Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
	})

	scheduler := cron.NewScheduler()
	if err := cron.NewPayrollJobs(payrollSvc).RegisterJobs(scheduler, cfg.Payroll.Cron); err != nil {
		log.Fatal("Invalid PAYROLL_CRON: ", err)
	}
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	scheduler.Stop()
}
