package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medicareplus/hms/internal/config"
	"github.com/medicareplus/hms/internal/domain/admission"
	"github.com/medicareplus/hms/internal/domain/ancillary"
	"github.com/medicareplus/hms/internal/domain/billing"
	"github.com/medicareplus/hms/internal/domain/identity"
	"github.com/medicareplus/hms/internal/domain/reporting"
	"github.com/medicareplus/hms/internal/domain/scheduling"
	"github.com/medicareplus/hms/internal/platform/auth"
	"github.com/medicareplus/hms/internal/platform/db"
	"github.com/medicareplus/hms/internal/platform/middleware"
	"github.com/medicareplus/hms/internal/platform/notification"
)

// schedulingDirectory adapts the identity service to the lookup interface the
// booking engine needs, avoiding an import cycle between the two domains.
type schedulingDirectory struct {
	identity *identity.Service
}

func (d *schedulingDirectory) Doctor(ctx context.Context, id int64) (*scheduling.Person, error) {
	doc, err := d.identity.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &scheduling.Person{ID: doc.ID, Name: doc.Name}
	if doc.Email != nil {
		p.Email = *doc.Email
	}
	return p, nil
}

func (d *schedulingDirectory) Patient(ctx context.Context, id int64) (*scheduling.Person, error) {
	pat, err := d.identity.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &scheduling.Person{ID: pat.ID, Name: pat.FullName()}
	if pat.Email != nil {
		p.Email = *pat.Email
	}
	return p, nil
}

// ancillaryPatients adapts the identity service for the lab/radiology booking
// flows, which denormalize patient contact details onto each booking.
type ancillaryPatients struct {
	identity *identity.Service
}

func (d *ancillaryPatients) Patient(ctx context.Context, id int64) (*ancillary.PatientInfo, error) {
	pat, err := d.identity.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	info := &ancillary.PatientInfo{ID: pat.ID, Name: pat.FullName()}
	if pat.Phone != nil {
		info.Phone = *pat.Phone
	}
	if pat.Email != nil {
		info.Email = *pat.Email
	}
	return info, nil
}

// admissionDirectory adapts the identity service for inpatient stays.
type admissionDirectory struct {
	identity *identity.Service
}

func (d *admissionDirectory) Patient(ctx context.Context, id int64) (*admission.Person, error) {
	pat, err := d.identity.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &admission.Person{ID: pat.ID, Name: pat.FullName()}
	if pat.Email != nil {
		p.Email = *pat.Email
	}
	return p, nil
}

func (d *admissionDirectory) Doctor(ctx context.Context, id int64) (*admission.Person, error) {
	doc, err := d.identity.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	return &admission.Person{ID: doc.ID, Name: doc.Name}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HMS API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("migrations")
			return runServer(dir)
		},
	}
	cmd.Flags().String("migrations", "./migrations", "Path to migrations directory")
	return cmd
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

func seedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the bootstrap admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				return fmt.Errorf("--password is required")
			}

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

			authSvc := auth.NewService(auth.NewUserRepoPG(pool), []byte(cfg.JWTSecret),
				time.Duration(cfg.TokenTTLHours)*time.Hour)
			user, err := authSvc.EnsureAdmin(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Printf("Admin account %q ready (id %d).\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "admin", "Admin username")
	cmd.Flags().String("password", "", "Admin password")
	return cmd
}

func runServer(migrationsDir string) error {
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

	migrator := db.NewMigrator(pool, migrationsDir)
	if count, err := migrator.Up(ctx); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	} else if count > 0 {
		logger.Info().Int("applied", count).Msg("migrations applied")
	}

	// Notification dispatcher
	var sender notification.EmailSender
	if cfg.SMTPEnabled() {
		sender = &notification.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}
	} else {
		sender = &notification.LogSender{Logger: logger}
	}
	dispatcher := notification.NewQueueDispatcher(sender, notification.NewTemplateEngine(),
		logger, cfg.NotifyQueueSize, cfg.NotifyWorkers)
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	dispatcher.Start(dispatchCtx)

	// Services
	identitySvc := identity.NewService(
		identity.NewPatientRepoPG(pool),
		identity.NewDoctorRepoPG(pool),
		identity.NewDepartmentRepoPG(pool),
	)
	schedulingSvc := scheduling.NewService(
		scheduling.NewAppointmentRepoPG(pool),
		&schedulingDirectory{identity: identitySvc},
		dispatcher,
	)
	ancillarySvc := ancillary.NewService(
		ancillary.NewLabTestRepoPG(pool),
		ancillary.NewRadiologyServiceRepoPG(pool),
		ancillary.NewLabBookingRepoPG(pool),
		ancillary.NewRadiologyBookingRepoPG(pool),
		&ancillaryPatients{identity: identitySvc},
		dispatcher,
	)
	admissionSvc := admission.NewService(
		admission.NewAdmissionRepoPG(pool),
		&admissionDirectory{identity: identitySvc},
		dispatcher,
	)
	billingSvc := billing.NewService(billing.NewLedgerRepoPG(pool))
	reportingSvc := reporting.NewService(reporting.NewStatsRepoPG(pool))
	authSvc := auth.NewService(auth.NewUserRepoPG(pool), []byte(cfg.JWTSecret),
		time.Duration(cfg.TokenTTLHours)*time.Hour)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Public routes: login, slot grid, patient self-service booking.
	public := e.Group("/api/v1/public")
	public.Use(middleware.RateLimit(rateLimitCfg))
	auth.NewHandler(authSvc).RegisterPublicRoutes(public)
	scheduling.NewHandler(schedulingSvc).RegisterPublicRoutes(public)

	// Authenticated API
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	if cfg.IsDev() && cfg.JWTSecret == "dev-secret-do-not-use-in-production" {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	auth.NewHandler(authSvc).RegisterRoutes(apiV1)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1)
	ancillary.NewHandler(ancillarySvc).RegisterRoutes(apiV1)
	admission.NewHandler(admissionSvc).RegisterRoutes(apiV1)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)
	reporting.NewHandler(reportingSvc).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	stopDispatch()
	dispatcher.Wait()
	return nil
}
