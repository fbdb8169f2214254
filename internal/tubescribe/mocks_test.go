package tubescribe

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/laytan/tubescribe/internal/gemini"
	"github.com/laytan/tubescribe/internal/tube"
)

type MockDownloader struct {
	DownloadFunc func(ctx context.Context, p tube.DownloadParams) error
	calls        atomic.Int32
}

func (m *MockDownloader) Download(ctx context.Context, p tube.DownloadParams) error {
	m.calls.Add(1)
	return m.DownloadFunc(ctx, p)
}

func (m *MockDownloader) Calls() int { return int(m.calls.Load()) }

type MockGenerator struct {
	GenerateFunc func(ctx context.Context, req gemini.Request) (string, error)
	calls        atomic.Int32
}

func (m *MockGenerator) Generate(ctx context.Context, req gemini.Request) (string, error) {
	m.calls.Add(1)
	return m.GenerateFunc(ctx, req)
}

func (m *MockGenerator) Calls() int { return int(m.calls.Load()) }

type MockDetector struct {
	DetectFunc func(text string) (string, bool)
}

func (m *MockDetector) Detect(text string) (string, bool) {
	return m.DetectFunc(text)
}

// writeAudio behaves like a successful yt-dlp run.
func writeAudio(_ context.Context, p tube.DownloadParams) error {
	if p.Cookies.Present && p.CookiesCopy != "" {
		if err := os.WriteFile(p.CookiesCopy, []byte("# Netscape HTTP Cookie File\n"), 0o600); err != nil {
			return err
		}
	}
	return os.WriteFile(p.Output, []byte("ID3 fake audio"), 0o600)
}

func replyWith(text string) func(context.Context, gemini.Request) (string, error) {
	return func(context.Context, gemini.Request) (string, error) {
		return text, nil
	}
}
