// Package browser implements the extraction surface on headless Chromium
// through go-rod.
//
// A [Session] owns one browser process and one page. Documents are loaded
// into that page one at a time, so a session serves a single worker. All
// element queries run in page-side JavaScript and return plain JSON.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	apperr "github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/extract"
)

// Defaults for [Options].
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultSettle         = 500 * time.Millisecond
	DefaultLaunchAttempts = 3
	DefaultLaunchDelay    = time.Second
)

// Options configures a browser session.
type Options struct {
	Bin            string        // Chromium binary; empty uses go-rod's lookup/download
	Headless       bool          // run without a window
	NoSandbox      bool          // pass --no-sandbox (containers)
	ViewportWidth  int           // CSS pixels
	ViewportHeight int           // CSS pixels
	Settle         time.Duration // wait after load for script-driven layout
	SlideSelector  string        // ancestor moved aside during isolated captures
	LaunchAttempts int
	LaunchDelay    time.Duration
	Logger         *log.Logger
}

// DefaultOptions returns headless options with every default applied.
func DefaultOptions() Options {
	o := Options{Headless: true}
	o.SetDefaults()
	return o
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = DefaultViewportHeight
	}
	if o.Settle == 0 {
		o.Settle = DefaultSettle
	}
	if o.SlideSelector == "" {
		o.SlideSelector = extract.DefaultSlideSelector
	}
	if o.LaunchAttempts <= 0 {
		o.LaunchAttempts = DefaultLaunchAttempts
	}
	if o.LaunchDelay <= 0 {
		o.LaunchDelay = DefaultLaunchDelay
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Session is one browser process with a single page. It implements
// extract.Surface and is not safe for concurrent use.
type Session struct {
	opts     Options
	logger   *log.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

var _ extract.Surface = (*Session)(nil)

// Launch starts Chromium and opens a blank page. Launch and connect
// failures are retried with exponential backoff.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	opts.SetDefaults()
	s := &Session{opts: opts, logger: opts.Logger}

	err := Retry(ctx, opts.LaunchAttempts, opts.LaunchDelay, func() error {
		err := s.start(ctx)
		if err != nil {
			s.logger.Debug("browser launch failed", "err", err)
			s.teardown()
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	return s, nil
}

func (s *Session) start(ctx context.Context) error {
	l := launcher.New().
		Context(ctx).
		Headless(s.opts.Headless).
		NoSandbox(s.opts.NoSandbox).
		Set("hide-scrollbars")
	if s.opts.Bin != "" {
		l = l.Bin(s.opts.Bin)
	}
	s.launcher = l

	u, err := l.Launch()
	if err != nil {
		return Retryable(err)
	}

	b := rod.New().Context(ctx).ControlURL(u)
	if err := b.Connect(); err != nil {
		return Retryable(err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return Retryable(err)
	}
	s.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.opts.ViewportWidth,
		Height:            s.opts.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	// Screenshots keep a transparent backdrop so crops find content bounds.
	transparent := map[string]any{"color": map[string]any{"r": 0, "g": 0, "b": 0, "a": 0}}
	if _, err := page.Call(ctx, string(page.SessionID), "Emulation.setDefaultBackgroundColorOverride", transparent); err != nil {
		return fmt.Errorf("set transparent background: %w", err)
	}
	return nil
}

// Load navigates the page to a local file and waits for the load event and
// the settle delay.
func (s *Session) Load(ctx context.Context, path string) error {
	u, err := fileURL(path)
	if err != nil {
		return err
	}
	p := s.page.Context(ctx)
	if err := p.Navigate(u); err != nil {
		return fmt.Errorf("navigate %s: %w", path, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait for load %s: %w", path, err)
	}
	if s.opts.Settle > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.Settle):
		}
	}
	return nil
}

// WaitForFonts waits for document.fonts.ready, bounded by timeout.
func (s *Session) WaitForFonts(ctx context.Context, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := s.page.Context(tctx).Eval(fontsJS); err != nil {
		if errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("fonts not ready after %s: %w", timeout, context.DeadlineExceeded)
		}
		return fmt.Errorf("wait for fonts: %w", err)
	}
	return nil
}

// QueryAll returns every element of the page matching selector.
func (s *Session) QueryAll(ctx context.Context, selector string) ([]extract.Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return wrapAll(els), nil
}

// IsolatedCapture writes a cropped PNG of el to dest. With scale > 1 the
// element is cloned at that font scale onto a transparent backdrop and
// captured alone; otherwise it is captured in place.
func (s *Session) IsolatedCapture(ctx context.Context, el extract.Element, scale float64, dest string) error {
	e, ok := el.(*Element)
	if !ok {
		return apperr.New(apperr.ErrCodeCapture, "foreign element %T", el)
	}
	target := e.el.Context(ctx)

	if scale > 1 {
		clone, err := target.ElementByJS(rod.Eval(cloneJS, scale, s.opts.SlideSelector))
		if err != nil {
			s.restore(ctx)
			return apperr.Wrap(apperr.ErrCodeCapture, err, "clone element")
		}
		defer s.restore(ctx)
		target = clone
	}

	data, err := target.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeCapture, err, "screenshot")
	}
	return saveCropped(data, dest)
}

// restore removes clones and puts shifted slides back.
func (s *Session) restore(ctx context.Context) {
	if _, err := s.page.Context(ctx).Eval(restoreJS); err != nil {
		s.logger.Debug("restore after capture failed", "err", err)
	}
}

// Close shuts down the page, the browser and its process.
func (s *Session) Close() error {
	err := s.teardown()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func (s *Session) teardown() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.launcher = nil
	}
	return errors.Join(errs...)
}

// fileURL turns a local path into an absolute file:// URL.
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// decode converts a page-side JSON value into v.
func decode(value json.Marshaler, v any) error {
	raw, err := value.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
