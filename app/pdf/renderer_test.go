package pdf

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"testing"
	"time"
)

func chromePath(t *testing.T) string {
	t.Helper()

	if path := os.Getenv("CHROME_PATH"); path != "" {
		return path
	}
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome binary available")
	return ""
}

func TestChromeRenderer_RenderPDF(t *testing.T) {
	renderer := NewChromeRenderer(chromePath(t), 60*time.Second)

	pdf, err := renderer.RenderPDF(context.Background(), "<html><body><h1>Weekly</h1><p>Hello</p></body></html>")
	if err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}

	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("Expected PDF output, got %q", pdf[:min(len(pdf), 16)])
	}
}

func TestChromeRenderer_CanceledContext(t *testing.T) {
	renderer := NewChromeRenderer(chromePath(t), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := renderer.RenderPDF(ctx, "<p>x</p>"); err == nil {
		t.Error("Expected error for canceled context")
	}
}
