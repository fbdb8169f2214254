package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/laytan/tubescribe/internal/client"
	"github.com/laytan/tubescribe/internal/config"
	"github.com/laytan/tubescribe/internal/gemini"
	"github.com/laytan/tubescribe/internal/lang"
	"github.com/laytan/tubescribe/internal/logging"
	"github.com/laytan/tubescribe/internal/store"
	"github.com/laytan/tubescribe/internal/tube"
	"github.com/laytan/tubescribe/internal/tubescribe"
	"github.com/rs/zerolog"
)

const usage = `usage:
  tubescribe [serve]               start the HTTP server
  tubescribe transcribe <url>      transcribe a video through a running server
  tubescribe translate <text>      translate text through a running server

TUBESCRIBE_API points the transcribe and translate commands at a server
(default http://localhost:8080/api).`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: %v\n", err)
		os.Exit(1)
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := serve(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case "transcribe":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		res := client.New(os.Getenv("TUBESCRIBE_API")).TranscribeVideo(os.Args[2])
		if res.Error != "" {
			log.Fatal().Str("url", os.Args[2]).Msg(res.Error)
		}
		fmt.Println(res.Transcription)
	case "translate":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		res := client.New(os.Getenv("TUBESCRIBE_API")).TranslateText(strings.Join(os.Args[2:], " "))
		if res.Error != "" {
			log.Fatal().Msg(res.Error)
		}
		fmt.Println(res.Translation)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func serve(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
		Log:     log.With().Str("component", "gemini").Logger(),
	})
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, store.Options{
		URL:       cfg.DatabaseURL,
		AuthToken: cfg.TursoAuthToken,
		Log:       log,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	log.Info().Str("dialect", string(db.Dialect)).Msg("database ready")

	if !tube.ResolveCookies(cfg.CookiesPath).Present {
		log.Warn().Str("path", cfg.CookiesPath).Msg("no cookies file, downloads run without cookies")
	}

	detector, err := lang.NewDetector()
	if err != nil {
		return err
	}

	srv := tubescribe.New(tubescribe.Config{
		Cache:          db.Queries(),
		Downloader:     tube.NewDownloader(cfg.YtDlpBin, cfg.YtDlpTimeout, log.With().Str("component", "yt-dlp").Logger()),
		Generator:      gen,
		Detector:       detector,
		CookiesPath:    cfg.CookiesPath,
		TempDir:        cfg.TempDir,
		TargetLanguage: cfg.TargetLanguage,
		Log:            log,
	})

	err = srv.Start(ctx, cfg.Addr())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
