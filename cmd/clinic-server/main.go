package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/badpower45/ttyyttmed/internal/config"
	"github.com/badpower45/ttyyttmed/internal/domain/identity"
	"github.com/badpower45/ttyyttmed/internal/domain/patient"
	"github.com/badpower45/ttyyttmed/internal/domain/portal"
	"github.com/badpower45/ttyyttmed/internal/domain/records"
	"github.com/badpower45/ttyyttmed/internal/domain/scheduling"
	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
	"github.com/badpower45/ttyyttmed/internal/platform/db"
	"github.com/badpower45/ttyyttmed/internal/platform/middleware"
)

// profileResolver maps user ids to the doctor or patient profile they own.
// It bridges the identity and patient packages into the narrow resolver
// interfaces the scheduling and records packages declare, avoiding circular
// imports between the domain packages.
type profileResolver struct {
	identity *identity.Service
	patients *patient.Service
}

func (r *profileResolver) DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	d, err := r.identity.DoctorByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return d.ID, nil
}

func (r *profileResolver) PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return r.patients.PatientIDForUser(ctx, userID)
}

// doctorDirectory resolves the clinic's doctor for bookings that name none.
type doctorDirectory struct {
	identity *identity.Service
}

func (d *doctorDirectory) ClinicDoctorID(ctx context.Context) (uuid.UUID, error) {
	return d.identity.ClinicDoctorID(ctx)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Sessions
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "insecure-development-only-secret-key"
		logger.Warn().Msg("JWT_SECRET not set, using insecure development key")
	}
	issuer := auth.NewTokenIssuer(secret, "clinic-server",
		time.Duration(cfg.SessionTTLHours)*time.Hour)

	// Services
	identitySvc := identity.NewService(identity.NewUserRepo(pool), identity.NewDoctorRepo(pool), issuer)

	schedulingRepo := scheduling.NewRepo(pool)
	recordsRepo := records.NewRepo(pool)
	patientRepo := patient.NewRepo(pool)

	// The patient service needs records and scheduling for the history
	// view, while scheduling and records need slices of the patient
	// registry. The cycle is broken through the narrow interfaces each
	// package declares; all concrete wiring happens here.
	var patientSvc *patient.Service
	resolver := &profileResolver{identity: identitySvc}
	doctors := &doctorDirectory{identity: identitySvc}

	recordsSvc := records.NewService(recordsRepo, resolver, patientCheckerFunc(func(ctx context.Context, id uuid.UUID) (bool, error) {
		return patientSvc.PatientExists(ctx, id)
	}))
	schedulingSvc := scheduling.NewService(schedulingRepo, patientDirectoryFuncs{
		name: func(ctx context.Context, id uuid.UUID) (string, error) {
			return patientSvc.NameByID(ctx, id)
		},
		guest: func(ctx context.Context, name string, age int, gender string) (uuid.UUID, error) {
			return patientSvc.CreateGuest(ctx, name, age, gender)
		},
	}, doctors, resolver)
	patientSvc = patient.NewService(patientRepo, recordsSvc, schedulingSvc)
	resolver.patients = patientSvc

	portalSvc := portal.NewService(portal.NewRepo(pool), patientSvc, identitySvc, recordsSvc, cfg.PortalBaseURL)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apierr.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API groups: public routes carry no session, protected routes require
	// a verified bearer token.
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	public := apiV1
	protected := apiV1.Group("", auth.Middleware(issuer))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Routes
	identity.NewHandler(identitySvc).RegisterRoutes(public, protected)
	patient.NewHandler(patientSvc).RegisterRoutes(protected)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(public, protected)
	records.NewHandler(recordsSvc).RegisterRoutes(protected)
	portal.NewHandler(portalSvc).RegisterRoutes(public, protected)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// patientCheckerFunc adapts a closure to records.PatientChecker so the
// records service can be constructed before the patient service exists.
type patientCheckerFunc func(ctx context.Context, id uuid.UUID) (bool, error)

func (f patientCheckerFunc) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f(ctx, id)
}

// patientDirectoryFuncs adapts closures to scheduling.PatientDirectory for
// the same construction-order reason.
type patientDirectoryFuncs struct {
	name  func(ctx context.Context, id uuid.UUID) (string, error)
	guest func(ctx context.Context, name string, age int, gender string) (uuid.UUID, error)
}

func (d patientDirectoryFuncs) NameByID(ctx context.Context, id uuid.UUID) (string, error) {
	return d.name(ctx, id)
}

func (d patientDirectoryFuncs) CreateGuest(ctx context.Context, name string, age int, gender string) (uuid.UUID, error) {
	return d.guest(ctx, name, age, gender)
}
