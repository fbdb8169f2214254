package tube

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoURL = "https://www.youtube.com/watch?v=tAP1eZYEuKA"

// fakeYtDlp writes a shell script that records its arguments to args.txt
// and then runs body.
func fakeYtDlp(t *testing.T, body string) (bin string, argsFile string) {
	t.Helper()

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	bin = filepath.Join(dir, "yt-dlp")
	script := `#!/bin/sh
printf '%s\n' "$@" > "` + argsFile + `"
out=""
prev=""
for a in "$@"; do
	if [ "$prev" = "--output" ]; then out="$a"; fi
	prev="$a"
done
` + body + "\n"

	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, argsFile
}

func readArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	b, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

func TestIsVideoURL(t *testing.T) {
	assert.True(t, IsVideoURL(videoURL))
	assert.True(t, IsVideoURL("https://youtube.com/shorts/abc"))
	assert.True(t, IsVideoURL("https://youtu.be/tAP1eZYEuKA"))
	assert.False(t, IsVideoURL("not-a-url"))
	assert.False(t, IsVideoURL("https://vimeo.com/123"))
	assert.False(t, IsVideoURL(""))
}

func TestResolveCookies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(src, []byte("# Netscape HTTP Cookie File\n"), 0o600))

	assert.Equal(t, Cookies{Source: src, Present: true}, ResolveCookies(src))
	assert.Equal(t, Cookies{}, ResolveCookies(filepath.Join(dir, "missing.txt")))
	assert.Equal(t, Cookies{}, ResolveCookies(dir))
	assert.Equal(t, Cookies{}, ResolveCookies(""))
}

func TestDownload(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs sh")
	}

	bin, argsFile := fakeYtDlp(t, `echo "fake mp3" > "$out"`)
	d := NewDownloader(bin, time.Minute, zerolog.Nop())

	output := filepath.Join(t.TempDir(), "audio.mp3")
	err := d.Download(context.Background(), DownloadParams{URL: videoURL, Output: output})
	require.NoError(t, err)

	assert.FileExists(t, output)
	assert.Equal(t, []string{
		videoURL, "--extract-audio", "--audio-format", "mp3", "--output", output, "--quiet",
	}, readArgs(t, argsFile))
}

func TestDownloadWithCookies(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs sh")
	}

	bin, argsFile := fakeYtDlp(t, `echo "fake mp3" > "$out"`)
	d := NewDownloader(bin, time.Minute, zerolog.Nop())

	dir := t.TempDir()
	src := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(src, []byte("cookie jar"), 0o400))
	copyPath := filepath.Join(dir, "cookies-copy.txt")
	output := filepath.Join(dir, "audio.mp3")

	err := d.Download(context.Background(), DownloadParams{
		URL:         videoURL,
		Output:      output,
		Cookies:     ResolveCookies(src),
		CookiesCopy: copyPath,
	})
	require.NoError(t, err)

	args := readArgs(t, argsFile)
	assert.Equal(t, []string{"--cookies", copyPath}, args[len(args)-2:])

	copied, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Equal(t, "cookie jar", string(copied))
}

func TestDownloadCookieCopyFailureContinues(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs sh")
	}

	bin, argsFile := fakeYtDlp(t, `echo "fake mp3" > "$out"`)
	d := NewDownloader(bin, time.Minute, zerolog.Nop())

	dir := t.TempDir()
	src := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(src, []byte("cookie jar"), 0o600))

	err := d.Download(context.Background(), DownloadParams{
		URL:         videoURL,
		Output:      filepath.Join(dir, "audio.mp3"),
		Cookies:     ResolveCookies(src),
		CookiesCopy: filepath.Join(dir, "no", "such", "dir", "cookies.txt"),
	})
	require.NoError(t, err)
	assert.NotContains(t, readArgs(t, argsFile), "--cookies")
}

func TestDownloadToolFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs sh")
	}

	bin, _ := fakeYtDlp(t, `echo "ERROR: Sign in to confirm you're not a bot" >&2; exit 1`)
	d := NewDownloader(bin, time.Minute, zerolog.Nop())

	err := d.Download(context.Background(), DownloadParams{
		URL:    videoURL,
		Output: filepath.Join(t.TempDir(), "audio.mp3"),
	})

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 1, toolErr.ExitCode)
	assert.Contains(t, err.Error(), "Sign in to confirm")
	assert.Contains(t, err.Error(), "exit code 1")
}

func TestDownloadMissingOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs sh")
	}

	bin, _ := fakeYtDlp(t, `exit 0`)
	d := NewDownloader(bin, time.Minute, zerolog.Nop())

	err := d.Download(context.Background(), DownloadParams{
		URL:    videoURL,
		Output: filepath.Join(t.TempDir(), "audio.mp3"),
	})

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDownloadMissingBinary(t *testing.T) {
	d := NewDownloader("tubescribe-no-such-yt-dlp", time.Minute, zerolog.Nop())

	err := d.Download(context.Background(), DownloadParams{
		URL:    videoURL,
		Output: filepath.Join(t.TempDir(), "audio.mp3"),
	})

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, -1, toolErr.ExitCode)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestDownloadTimeout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs sh")
	}

	bin, _ := fakeYtDlp(t, `exec sleep 5`)
	d := NewDownloader(bin, 50*time.Millisecond, zerolog.Nop())

	err := d.Download(context.Background(), DownloadParams{
		URL:    videoURL,
		Output: filepath.Join(t.TempDir(), "audio.mp3"),
	})

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
