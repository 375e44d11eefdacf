package rod

import (
	"sync"

	"github.com/fwojciec/webclip"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is how many pages a browser renders before it is replaced.
const DefaultMaxPages = 75

// BrowserManager hands out tabs from one headless browser and replaces the
// browser after a fixed number of tabs, since Chrome's memory baseline only
// grows while it runs. It is safe for concurrent use.
type BrowserManager struct {
	maxPages int
	bin      string
	images   bool

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	opened   int
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many tabs a browser opens before it is replaced.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithBin runs the browser binary at path instead of the one rod downloads.
func WithBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// WithImages turns image loading on. Clipping reads only the DOM, so images
// are off by default; their src attributes are still present.
func WithImages(enabled bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.images = enabled
	}
}

// NewBrowserManager launches a headless browser. Close must be called when
// the manager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	if err := bm.launch(); err != nil {
		return nil, err
	}
	return bm, nil
}

// Page opens a blank tab, replacing the browser first when it has opened
// maxPages tabs. The caller closes the page.
func (bm *BrowserManager) Page() (*rod.Page, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, webclip.Errorf(webclip.EINVALID, "browser is closed")
	}
	if bm.maxPages > 0 && bm.opened >= bm.maxPages {
		bm.recycle()
	}

	page, err := bm.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, webclip.Errorf(webclip.EINTERNAL, "opening tab: %v", err)
	}
	bm.opened++
	return page, nil
}

// Opened reports how many tabs the current browser has opened.
func (bm *BrowserManager) Opened() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.opened
}

// Close shuts the browser down. It is safe to call more than once.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.shutdown(bm.browser, bm.launcher)
}

// launch starts a browser. Must be called with mu held.
func (bm *BrowserManager) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("mute-audio").
		Leakless(true).
		Headless(true)
	if bm.bin != "" {
		l = l.Bin(bm.bin)
	}
	if !bm.images {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	u, err := l.Launch()
	if err != nil {
		return webclip.Errorf(webclip.EINTERNAL, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return webclip.Errorf(webclip.EINTERNAL, "connecting to browser: %v", err)
	}

	bm.browser = browser
	bm.launcher = l
	bm.opened = 0
	return nil
}

// recycle swaps in a fresh browser, keeping the old one when the launch
// fails. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	oldBrowser, oldLauncher := bm.browser, bm.launcher
	if err := bm.launch(); err != nil {
		bm.browser, bm.launcher = oldBrowser, oldLauncher
		return
	}
	_ = bm.shutdown(oldBrowser, oldLauncher)
}

func (bm *BrowserManager) shutdown(b *rod.Browser, l *launcher.Launcher) error {
	var err error
	if b != nil {
		err = b.Close()
	}
	if l != nil {
		l.Kill()
	}
	return err
}
