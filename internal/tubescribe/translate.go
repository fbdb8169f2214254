package tubescribe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/laytan/tubescribe/internal/config"
	"github.com/laytan/tubescribe/internal/gemini"
)

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	Translation      string `json:"translation"`
	DetectedLanguage string `json:"detectedLanguage,omitempty"`
}

func (s *Server) translate(c *fiber.Ctx) error {
	var req translateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing 'text' in request body.")
	}

	translation, detected, err := s.Translate(c.UserContext(), req.Text)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Translation error: "+err.Error())
	}

	return c.JSON(translateResponse{Translation: translation, DetectedLanguage: detected})
}

// Translate translates text into the configured target language, detected
// is the source language when it could be determined.
func (s *Server) Translate(ctx context.Context, text string) (translation, detected string, err error) {
	if s.cfg.Detector != nil {
		detected, _ = s.cfg.Detector.Detect(text)
	}

	translation, err = s.cfg.Generator.Generate(ctx, gemini.Request{
		Prompt: TranslatePrompt(text, detected, s.targetLanguage()),
	})
	if err != nil {
		return "", "", err
	}

	return translation, detected, nil
}

func (s *Server) targetLanguage() string {
	if s.cfg.TargetLanguage == "" {
		return config.DefaultTargetLanguage
	}
	return s.cfg.TargetLanguage
}

// TranslatePrompt builds the instruction, source may be empty.
func TranslatePrompt(text, source, target string) string {
	if source != "" {
		source += " "
	}
	return fmt.Sprintf("Translate the following %stext to %s:\n\n%s\n\nReturn ONLY the translated text.", source, target, text)
}
