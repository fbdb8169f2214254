package tube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	AudioFormat = "mp3"
	AudioMIME   = "audio/mpeg"
)

// IsVideoURL reports whether s looks like a YouTube link, a substring match
// on the domain is all yt-dlp needs from us.
func IsVideoURL(s string) bool {
	return strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be/")
}

// Cookies is the outcome of looking for a cookie file, Present is false
// when there is nothing to pass to yt-dlp.
type Cookies struct {
	Source  string
	Present bool
}

func ResolveCookies(source string) Cookies {
	if source == "" {
		return Cookies{}
	}

	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return Cookies{}
	}

	return Cookies{Source: source, Present: true}
}

// ExternalToolError is returned when yt-dlp can't be run, exits non-zero, or
// does not leave the expected output behind.
type ExternalToolError struct {
	Tool     string
	ExitCode int // -1 if the process did not exit normally.
	Output   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	var msg string
	switch {
	case e.ExitCode > 0:
		msg = fmt.Sprintf("%s: exit code %d", e.Tool, e.ExitCode)
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %v", e.Tool, e.Err)
	default:
		msg = e.Tool + " failed"
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

type Downloader struct {
	Bin     string
	Timeout time.Duration
	Log     zerolog.Logger
}

func NewDownloader(bin string, timeout time.Duration, log zerolog.Logger) *Downloader {
	if bin == "" {
		bin = "yt-dlp"
	}

	return &Downloader{Bin: bin, Timeout: timeout, Log: log}
}

type DownloadParams struct {
	URL    string
	Output string // Where the mp3 ends up.

	Cookies Cookies
	// CookiesCopy is a writable path the cookie source is copied to,
	// yt-dlp writes back to the cookie jar so the source (often a read-only
	// secret mount) can't be handed over directly.
	CookiesCopy string
}

// Download extracts the audio of the video at p.URL into p.Output.
//
// The files written (p.Output and p.CookiesCopy) are not removed here,
// that is up to the caller.
func (d *Downloader) Download(ctx context.Context, p DownloadParams) error {
	args := []string{
		p.URL,
		"--extract-audio",
		"--audio-format",
		AudioFormat,
		"--output",
		p.Output,
		"--quiet",
	}

	if p.Cookies.Present && p.CookiesCopy != "" {
		if err := copyFile(p.Cookies.Source, p.CookiesCopy); err != nil {
			d.Log.Error().Err(err).Str("source", p.Cookies.Source).Msg("copying cookies, continuing without them")
		} else {
			d.Log.Debug().Str("source", p.Cookies.Source).Str("copy", p.CookiesCopy).Msg("using cookies")
			args = append(args, "--cookies", p.CookiesCopy)
		}
	} else {
		d.Log.Debug().Msg("no cookies file, proceeding without cookies")
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	d.Log.Info().Str("url", p.URL).Str("output", p.Output).Msg("downloading audio")

	cmd := exec.CommandContext(ctx, d.Bin, args...)
	out := &bytes.Buffer{}
	cmd.Stdout = out // yt-dlp reports some errors on stdout.
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return d.execErr(ctx, err, out.String())
	}

	if _, err := os.Stat(p.Output); err != nil {
		return &ExternalToolError{
			Tool:     d.Bin,
			ExitCode: 0,
			Output:   out.String(),
			Err:      fmt.Errorf("expected output %q: %w", p.Output, err),
		}
	}

	return nil
}

func (d *Downloader) execErr(ctx context.Context, err error, output string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ExternalToolError{Tool: d.Bin, ExitCode: -1, Output: output, Err: ctxErr}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExternalToolError{Tool: d.Bin, ExitCode: exitErr.ExitCode(), Output: output, Err: err}
	}

	return &ExternalToolError{Tool: d.Bin, ExitCode: -1, Output: output, Err: err}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}

	return out.Close()
}
