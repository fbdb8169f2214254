package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Model is the only model requests are sent to.
const Model = "gemini-2.5-flash"

var (
	ErrMissingCredential = errors.New("missing GEMINI_API_KEY in environment variables")
	ErrEmptyResponse     = errors.New("empty response from Gemini API")
)

// GenerationError wraps anything that kept the model from producing text.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "Gemini API error: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type Config struct {
	APIKey  string
	BaseURL string        // Optional, the SDK default is used when empty.
	Timeout time.Duration // Per Generate call, 0 means no limit.
	Log     zerolog.Logger
}

// Audio is sent inline next to the prompt.
type Audio struct {
	Data     []byte
	MIMEType string
}

type Request struct {
	Prompt string
	Audio  *Audio
}

type Client struct {
	genai   *genai.Client
	timeout time.Duration
	log     zerolog.Logger
}

// New creates the process wide client, it fails with ErrMissingCredential
// before anything else when there is no API key.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	return &Client{genai: c, timeout: cfg.Timeout, log: cfg.Log}, nil
}

// Generate sends one request (text part plus optional audio part) and returns
// the model's plain text answer.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Audio != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Audio.Data, req.Audio.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, Model, contents, nil)
	if err != nil {
		c.log.Error().Err(err).Msg("gemini request failed")
		return "", &GenerationError{Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &GenerationError{Err: ErrEmptyResponse}
	}

	c.log.Debug().Dur("took", time.Since(start)).Int("chars", len(text)).Msg("gemini responded")
	return text, nil
}
