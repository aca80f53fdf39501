package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/video-analitics/catalog/internal/api"
	"github.com/video-analitics/catalog/internal/cache"
	"github.com/video-analitics/catalog/internal/config"
	"github.com/video-analitics/catalog/internal/service"
	"github.com/video-analitics/catalog/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "catalog",
		Usage: "extract media records and download links from a catalog site",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a yaml config file"},
			&cli.StringFlag{Name: "base-url", Usage: "catalog site origin", EnvVars: []string{"BASE_URL"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "listen port", EnvVars: []string{"HTTP_PORT"}},
				},
				Action: serve,
			},
			{
				Name:      "scrape",
				Usage:     "fetch one resource and print it",
				ArgsUsage: "<catalog|search|movie|series|episodes|episode> [url|id|query]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "json", Usage: "json or yaml"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.StringFlag{Name: "type", Usage: "movie or series"},
				},
				Action: scrape,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Load()
	}
	if u := c.String("base-url"); u != "" {
		cfg.BaseURL = strings.TrimSuffix(u, "/")
	}

	logger.Setup(logger.Options{
		Dev:   logger.IsDev(),
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if p := c.String("port"); p != "" {
		cfg.HTTPPort = p
	}
	log := logger.Log

	comp, err := build(cfg, nil)
	if err != nil {
		return err
	}

	sweeper, err := cache.NewSweeper(comp.store, cfg.SweepInterval)
	if err != nil {
		return fmt.Errorf("create sweeper: %w", err)
	}
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer func() {
		if err := sweeper.Stop(); err != nil {
			log.Error().Err(err).Msg("sweeper shutdown")
		}
	}()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	api.SetupRoutes(app, api.NewHandler(comp.svc), comp.registry)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.HTTPPort
		log.Info().Str("addr", addr).Str("base_url", cfg.BaseURL).Msg("HTTP API server starting")
		errCh <- app.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	removed := comp.store.Clear()
	log.Info().Int("cache_entries", removed).Msg("stopped")
	return nil
}

func scrape(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	comp, err := build(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out, err := run(ctx, comp.svc, c.Args().Get(0), c.Args().Get(1), c.Int("page"), c.String("type"))
	if err != nil {
		return err
	}
	return write(os.Stdout, c.String("format"), out)
}

func run(ctx context.Context, svc *service.Service, op, arg string, page int, mediaType string) (any, error) {
	switch op {
	case "catalog":
		return svc.Catalog(ctx, page, mediaType)
	case "search":
		return svc.Search(ctx, arg, page, mediaType)
	case "movie":
		return svc.Movie(ctx, arg)
	case "series":
		return svc.Series(ctx, arg)
	case "episodes":
		return svc.Episodes(ctx, arg)
	case "episode":
		return svc.Episode(ctx, arg)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
