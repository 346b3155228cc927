package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/middleware"
	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/kendall-kelly/mill-ops-console/services"
	"github.com/kendall-kelly/mill-ops-console/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serveOptions struct {
	autoMigrate bool
}

type migrateOptions struct {
	dir string
}

// newRootCommand creates the opsconsole command. Without a subcommand it serves the console.
func newRootCommand() *cobra.Command {
	serveOpts := &serveOptions{}

	cmd := &cobra.Command{
		Use:           "opsconsole",
		Short:         "Mill operations console",
		Long:          "Back-office console for a textile mill: clients, orders, inventory, reorders and finance.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(serveOpts)
		},
	}
	cmd.Flags().BoolVar(&serveOpts.autoMigrate, "auto-migrate", true, "create missing tables from the models on startup")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())

	return cmd
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	cmd.Flags().BoolVar(&opts.autoMigrate, "auto-migrate", true, "create missing tables from the models on startup")

	return cmd
}

func newMigrateCommand() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the SQL migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{config.MigrateUp, config.MigrateDown},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return config.RunMigrations(cfg.DatabaseURL, opts.dir, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", config.DefaultMigrationsDir, "directory holding the migration files")

	return cmd
}

// bootstrap loads and validates the configuration and installs the process logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.SetConfig(cfg)

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	config.SetLogger(logger)

	return cfg, logger, nil
}

func runServe(opts *serveOptions) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Mill Ops Console", zap.String("env", cfg.GoEnv))

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return err
	}
	db := config.GetDB()

	if opts.autoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database migration completed successfully")
	}

	if err := initImageStorage(cfg, logger); err != nil {
		return err
	}

	services.SetPDFRenderer(&services.ExecPDFRenderer{
		BinaryPath: cfg.PDFRendererPath,
		Timeout:    cfg.PDFRenderTimeout,
		Logger:     logger,
	})

	auth, err := authChain(cfg, logger, db)
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, logger, auth...)

	addr := ":" + cfg.Port
	logger.Info("Server is running", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// initImageStorage stores avatars in S3 when a bucket is configured and under UploadDir otherwise
func initImageStorage(cfg *config.Config, logger *zap.Logger) error {
	if cfg.UsesS3() {
		s3Service, err := services.InitS3Service(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize S3: %w", err)
		}
		services.InitImageService(s3Service)
		logger.Info("Storing avatars in S3", zap.String("bucket", cfg.AWSS3Bucket))
		return nil
	}

	utils.UploadDir = cfg.UploadDir
	services.InitLocalImageService(cfg.UploadDir)
	logger.Info("Storing avatars on disk", zap.String("dir", cfg.UploadDir))
	return nil
}

// authChain builds the middleware guarding the console routes
func authChain(cfg *config.Config, logger *zap.Logger, db *gorm.DB) ([]gin.HandlerFunc, error) {
	if !cfg.AuthEnabled() {
		logger.Warn("AUTH0_DOMAIN not set, console routes are unauthenticated")
		return nil, nil
	}

	validate, err := middleware.EnsureValidToken(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up token validation: %w", err)
	}

	chain := []gin.HandlerFunc{validate}
	if cfg.AdminScope != "" {
		chain = append(chain, middleware.RequireScope(cfg.AdminScope))
	}
	userService := services.NewUserService(db, logger, services.NewAuth0Service(cfg))
	chain = append(chain, middleware.ActingUser(userService))

	return chain, nil
}
