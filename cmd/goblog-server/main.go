package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/website/blog/application"
	"github.com/dfryer1193/website/blog/persistence"
	"github.com/dfryer1193/website/internal/config"
	"github.com/dfryer1193/website/internal/rest"
	"github.com/dfryer1193/website/internal/site"
	projectapp "github.com/dfryer1193/website/projects/application"
	"github.com/dfryer1193/website/projects/domain"
	"github.com/dfryer1193/website/shared/db/sqlite"
	gh "github.com/dfryer1193/website/shared/github"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg)

	if cfg.File != "" {
		log.Info().Str("file", cfg.File).Msg("Loaded configuration")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Website stopped with an error")
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel())
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.LogLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(cfg.DB.Path, cfg.DB.Driver))
	if err := database.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	markdown := application.NewMarkdownRenderer(application.WithImagePrefix(cfg.ImagePrefix))
	postService := application.NewPostService(persistence.NewPostRepository(database.DB()), markdown)

	if _, err := postService.Load(ctx, cfg.PostsDir); err != nil {
		return fmt.Errorf("problem loading blog posts: %w", err)
	}

	var source domain.RepositorySource
	if cfg.GitHub.Token != "" {
		source = gh.NewRepositorySource(gh.NewClient(cfg.GitHub.Token))
	} else {
		log.Warn().Msg("No GitHub token configured, projects will not be enriched")
	}

	projects, err := projectapp.NewProjectService(source, markdown).Load(ctx, cfg.ProjectsFile)
	if err != nil {
		return fmt.Errorf("problem loading projects: %w", err)
	}

	website, err := site.New(postService,
		site.WithName(cfg.SiteName),
		site.WithProjects(projects),
		site.WithResumeLink(cfg.ResumeLink),
		site.WithStaticDir(cfg.StaticDir),
	)
	if err != nil {
		return err
	}

	if cfg.ExportDir != "" {
		_, err := site.NewExporter(website, cfg.StaticDir).Export(ctx, cfg.ExportDir)
		return err
	}

	return serve(cfg.Port, rest.NewRouter(website, postService, cfg.StaticDir))
}

func serve(port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
