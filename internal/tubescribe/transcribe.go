package tubescribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/laytan/tubescribe/internal/gemini"
	"github.com/laytan/tubescribe/internal/store"
	"github.com/laytan/tubescribe/internal/tube"
)

// TranscribePrompt is sent along with the audio.
const TranscribePrompt = "Provide a detailed, accurate transcription of this audio. " +
	"Return ONLY the plain text of what is said. " +
	"Do NOT include timestamps, speaker labels, or any other metadata. " +
	"Do NOT format it as a script."

var ErrEmptyTranscription = errors.New("empty transcription")

type transcribeRequest struct {
	YoutubeURL string `json:"youtubeUrl"`
}

type transcribeResponse struct {
	Transcription string `json:"transcription"`
}

func (s *Server) transcribe(c *fiber.Ctx) error {
	var req transcribeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || !tube.IsVideoURL(req.YoutubeURL) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid or missing YouTube URL")
	}

	text, err := s.Transcribe(c.UserContext(), req.YoutubeURL)
	if errors.Is(err, ErrEmptyTranscription) {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to transcribe audio.")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Server error: "+err.Error())
	}

	return c.JSON(transcribeResponse{Transcription: text})
}

// Transcribe returns the cached transcription of url, or downloads, transcribes
// and caches it. Two concurrent calls for a new url both do the work, the
// second insert loses and is dropped.
func (s *Server) Transcribe(ctx context.Context, url string) (string, error) {
	video, err := s.cfg.Cache.FindByURL(ctx, url)
	switch {
	case err == nil:
		if video.Transcription.Valid && video.Transcription.String != "" {
			s.log.Debug().Str("url", url).Msg("transcription cache hit")
			return video.Transcription.String, nil
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return "", fmt.Errorf("looking up %s: %w", url, err)
	}

	w, err := s.newWorkspace()
	if err != nil {
		return "", err
	}
	defer w.release()

	err = s.cfg.Downloader.Download(ctx, tube.DownloadParams{
		URL:         url,
		Output:      w.audio,
		Cookies:     tube.ResolveCookies(s.cfg.CookiesPath),
		CookiesCopy: w.cookies,
	})
	if err != nil {
		return "", fmt.Errorf("downloading audio: %w", err)
	}

	audio, err := os.ReadFile(w.audio)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}

	text, err := s.cfg.Generator.Generate(ctx, gemini.Request{
		Prompt: TranscribePrompt,
		Audio:  &gemini.Audio{Data: audio, MIMEType: tube.AudioMIME},
	})
	if errors.Is(err, gemini.ErrEmptyResponse) {
		return "", ErrEmptyTranscription
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscription
	}

	_, err = s.cfg.Cache.CreateVideo(ctx, store.CreateVideoParams{URL: url, Transcription: text})
	switch {
	case errors.Is(err, store.ErrConstraint):
		s.log.Warn().Str("url", url).Msg("transcription already cached by a concurrent request")
	case err != nil:
		return "", fmt.Errorf("saving transcription: %w", err)
	}

	return text, nil
}

// workspace holds the scratch file paths of one transcription.
type workspace struct {
	s       *Server
	id      string
	audio   string
	cookies string
}

func (s *Server) newWorkspace() (*workspace, error) {
	dir := s.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	id := uuid.NewString()
	return &workspace{
		s:       s,
		id:      id,
		audio:   filepath.Join(dir, id+"."+tube.AudioFormat),
		cookies: filepath.Join(dir, "cookies-"+id+".txt"),
	}, nil
}

// release removes everything the workspace (or yt-dlp, which may leave
// intermediate files next to the output) wrote. Failures are only logged.
func (w *workspace) release() {
	files := []string{w.audio, w.cookies}

	dir := filepath.Dir(w.audio)
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.s.log.Error().Err(err).Str("dir", dir).Msg("listing files to delete failed")
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if strings.HasPrefix(e.Name(), w.id) && path != w.audio {
			files = append(files, path)
		}
	}

	for _, file := range files {
		err := os.Remove(file)
		switch {
		case err == nil:
			w.s.log.Debug().Str("file", file).Msg("cleaned up")
		case !errors.Is(err, os.ErrNotExist):
			w.s.log.Warn().Err(err).Str("file", file).Msg("could not delete temp file")
		}
	}
}
