package tubescribe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/laytan/tubescribe/internal/gemini"
	"github.com/laytan/tubescribe/internal/logging"
	"github.com/laytan/tubescribe/internal/store"
	"github.com/laytan/tubescribe/internal/tube"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const ShutdownTimeout = 10 * time.Second

type Cache interface {
	FindByURL(ctx context.Context, url string) (store.Video, error)
	CreateVideo(ctx context.Context, arg store.CreateVideoParams) (store.Video, error)
}

type Downloader interface {
	Download(ctx context.Context, p tube.DownloadParams) error
}

type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

type LanguageDetector interface {
	Detect(text string) (name string, ok bool)
}

type Config struct {
	Cache      Cache
	Downloader Downloader
	Generator  Generator
	Detector   LanguageDetector // Optional.

	CookiesPath    string
	TempDir        string
	TargetLanguage string

	Log zerolog.Logger
}

type Server struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config) *Server {
	return &Server{cfg: cfg, log: cfg.Log}
}

type errorResponse struct {
	Error string `json:"error"`
}

// App wires the routes, every error leaves the app as {"error": "..."}.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(logging.Requests(s.log))
	app.Use(recover.New())

	api := app.Group("/api")
	api.Post("/transcribe", s.transcribe)
	api.Post("/translate", s.translate)

	return app
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	msg := err.Error()

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	}

	return c.Status(code).JSON(errorResponse{Error: msg})
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	app := s.App()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("listening")
		return app.Listen(addr)
	})
	group.Go(func() error {
		<-ctx.Done()
		s.log.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(ShutdownTimeout)
	})

	return group.Wait()
}
