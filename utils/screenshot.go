package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// CaptureScreenshot saves a full-page screenshot under logs/screenshots and
// returns its path. Used on auth failures to keep the evidence.
func CaptureScreenshot(page playwright.Page, name string) (string, error) {
	dir := filepath.Join("logs", "screenshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s.png", name, time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, filename)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
