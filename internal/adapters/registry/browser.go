package registry

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// BrowserClient renders registry pages in a headless browser. The browser is started on the
// first session and shared afterwards, every session gets its own incognito context.
type BrowserClient struct {
	cfg Config

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewBrowserClient(cfg Config) (*BrowserClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &BrowserClient{cfg: cfg}, nil
}

func (c *BrowserClient) connect() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		return c.browser, nil
	}

	controlURL := c.cfg.BrowserURL
	if controlURL == "" {
		l := launcher.New().Headless(true).Leakless(false)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		c.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		c.killLauncher()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	log.Info().Bool("launched", c.launcher != nil).Msg("connected to browser")
	c.browser = b

	return b, nil
}

func (c *BrowserClient) OpenSession(ctx context.Context) (port.LookupSession, error) {
	b, err := c.connect()
	if err != nil {
		return nil, err
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to open incognito context: %w", err)
	}

	s := &BrowserSession{browser: incognito, cfg: c.cfg}

	if c.cfg.HomeURL != "" {
		if err := s.visit(ctx, c.cfg.HomeURL); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to open registry session: %w", err)
		}
	}

	return s, nil
}

// Close shuts down a browser launched by the client. A browser reached through BrowserURL is
// left running.
func (c *BrowserClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.browser != nil && c.launcher != nil {
		err = c.browser.Close()
	}
	c.browser = nil
	c.killLauncher()

	return err
}

func (c *BrowserClient) killLauncher() {
	if c.launcher == nil {
		return
	}
	c.launcher.Kill()
	c.launcher = nil
}

// BrowserSession is one incognito browser context. Cookies set during the session are visible
// to all of its lookups and to no other session.
type BrowserSession struct {
	browser *rod.Browser
	cfg     Config

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func (s *BrowserSession) FetchCompany(ctx context.Context, identifier string) (domain.Company, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return domain.Company{}, ErrSessionClosed
	}

	target, err := searchURL(s.cfg.SearchURL, identifier)
	if err != nil {
		return domain.Company{}, err
	}

	page, err := s.openPage(ctx, target)
	if err != nil {
		return domain.Company{}, err
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)
	if _, err := p.Timeout(s.cfg.RenderTimeout).Element(s.cfg.Selectors.Landmark); err != nil {
		if ctx.Err() != nil {
			return domain.Company{}, ctx.Err()
		}
		return domain.Company{}, fmt.Errorf("%w: page not rendered within %s",
			domain.ErrCompanyNotFound, s.cfg.RenderTimeout)
	}

	html, err := p.HTML()
	if err != nil {
		return domain.Company{}, fmt.Errorf("failed to read page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.Company{}, fmt.Errorf("failed to parse page: %w", err)
	}

	return extract(doc, s.cfg.Selectors)
}

func (s *BrowserSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.closeErr = s.browser.Close()
	})

	return s.closeErr
}

func (s *BrowserSession) visit(ctx context.Context, target string) error {
	page, err := s.openPage(ctx, target)
	if err != nil {
		return err
	}
	defer func() { _ = page.Close() }()

	if err := page.Context(ctx).Timeout(s.cfg.RenderTimeout).WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", target, err)
	}

	return nil
}

// openPage opens a tab in the session context and starts loading target. The returned page is
// not bound to ctx so it can be closed after ctx is done.
func (s *BrowserSession) openPage(ctx context.Context, target string) (*rod.Page, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	p := page.Context(ctx)

	if s.cfg.UserAgent != "" {
		err = p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.cfg.UserAgent})
		if err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if err := p.Navigate(target); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to load %s: %w", target, err)
	}

	return page, nil
}
