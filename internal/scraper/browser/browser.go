// Package browser drives a real Chrome through Rod to capture portal pages
// the way a user sees them.
package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// LaunchOptions configures the browser process.
type LaunchOptions struct {
	// Bin is the Chrome binary; empty lets Rod look one up.
	Bin      string
	Headless bool
}

// Launch starts Chrome and connects to it.
func Launch(opts LaunchOptions) (*rod.Browser, error) {
	l := launcher.New().
		Headless(opts.Headless).
		// Disable the "Automation" internal flags
		Set("disable-blink-features", "AutomationControlled").
		Set("exclude-switches", "enable-automation").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("window-size", "1280,1024").
		Devtools(false)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	return b, nil
}

// NewPage opens a tab with the stealth evasions loaded.
func NewPage(b *rod.Browser) (*rod.Page, error) {
	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("open stealth page: %w", err)
	}
	return page, nil
}
