package followup

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// HTTPTitleRunner fetches the page at a discovered HTTP(S) socket and
// reports its <title>. Grounded on the teacher's tmp/defaultCredentials.go
// GetFields, stripped of its field-dump behaviour: a follow-up collaborator
// reports, it does not enumerate a login form's inputs.
type HTTPTitleRunner struct {
	Client        *http.Client
	Screenshot    bool
	ScreenshotDir string
}

func NewHTTPTitleRunner(screenshot bool, screenshotDir string) *HTTPTitleRunner {
	return &HTTPTitleRunner{
		Client:        &http.Client{Timeout: 5 * time.Second},
		Screenshot:    screenshot,
		ScreenshotDir: screenshotDir,
	}
}

func (r *HTTPTitleRunner) Name() string { return "http-title" }

func (r *HTTPTitleRunner) Applies(f Finding) bool {
	return f.Service == "http" || f.Service == "https"
}

func (r *HTTPTitleRunner) Run(ctx context.Context, f Finding) (string, error) {
	scheme := "http"
	if f.Service == "https" {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s:%d/", scheme, f.Host, f.Port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "(no title)"
	}

	line := fmt.Sprintf("%s -> %q [%d]", url, title, resp.StatusCode)

	if r.Screenshot {
		if path, err := r.captureScreenshot(ctx, url); err != nil {
			line += fmt.Sprintf(" (screenshot failed: %v)", err)
		} else {
			line += fmt.Sprintf(" (screenshot: %s)", path)
		}
	}

	return line, nil
}

func (r *HTTPTitleRunner) captureScreenshot(ctx context.Context, url string) (string, error) {
	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	cctx, cancelTimeout := context.WithTimeout(cctx, 15*time.Second)
	defer cancelTimeout()

	var buf []byte
	if err := chromedp.Run(cctx,
		chromedp.Navigate(url),
		chromedp.Sleep(1*time.Second),
		chromedp.CaptureScreenshot(&buf),
	); err != nil {
		return "", err
	}

	dir := r.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := strings.NewReplacer(":", "_", "/", "_").Replace(strings.TrimPrefix(url, "http://"))
	name = strings.NewReplacer(":", "_", "/", "_").Replace(strings.TrimPrefix(name, "https://"))
	path := filepath.Join(dir, name+".png")

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
