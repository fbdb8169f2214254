// Package client talks to a running tubescribe server.
package client

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	// DefaultTimeout covers a full download and transcription.
	DefaultTimeout = 15 * time.Minute
)

const unknownError = "An unknown error occurred."

type Client struct {
	BaseURL string
	Timeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TranscribeResponse carries either the transcription or a user facing error.
type TranscribeResponse struct {
	Transcription string
	Error         string
}

type TranslateResponse struct {
	Translation string
	Error       string
}

type reply struct {
	Transcription string `json:"transcription"`
	Translation   string `json:"translation"`
	Error         string `json:"error"`
}

func (c *Client) TranscribeVideo(url string) TranscribeResponse {
	r, errMsg := c.post("/transcribe", map[string]string{"youtubeUrl": url})
	if errMsg != "" {
		return TranscribeResponse{Error: errMsg}
	}
	if r.Transcription == "" {
		return TranscribeResponse{Error: "Received an empty transcription from the server."}
	}
	return TranscribeResponse{Transcription: r.Transcription}
}

func (c *Client) TranslateText(text string) TranslateResponse {
	r, errMsg := c.post("/translate", map[string]string{"text": text})
	if errMsg != "" {
		return TranslateResponse{Error: errMsg}
	}
	if r.Translation == "" {
		return TranslateResponse{Error: "Received an empty translation from the server."}
	}
	return TranslateResponse{Translation: r.Translation}
}

// post returns the decoded reply, or a non-empty error message.
func (c *Client) post(path string, payload any) (reply, string) {
	a := fiber.Post(c.BaseURL + path).JSON(payload)
	if c.Timeout > 0 {
		a.Timeout(c.Timeout)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a) // Bytes releases it otherwise.
		return reply{}, err.Error()
	}

	code, body, errs := a.Bytes()

	var r reply
	decodeErr := json.Unmarshal(body, &r)

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		switch {
		case r.Error != "":
			return reply{}, r.Error
		case len(errs) > 0:
			return reply{}, errs[0].Error()
		default:
			return reply{}, unknownError
		}
	}

	if len(errs) > 0 {
		return reply{}, errs[0].Error()
	}
	if decodeErr != nil {
		return reply{}, unknownError
	}

	return r, ""
}
