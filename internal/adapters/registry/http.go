package registry

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

const maxPageSize = 5 << 20

// Client looks companies up by downloading the registry pages without running their scripts.
// It only finds companies whose page is rendered on the server.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Client{cfg: cfg}, nil
}

// OpenSession starts a session with a fresh cookie jar. When a home URL is configured the home
// page is loaded first so the registry hands out its session cookies.
func (c *Client) OpenSession(ctx context.Context) (port.LookupSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	s := &Session{
		client: &http.Client{Jar: jar, Transport: http.DefaultTransport.(*http.Transport).Clone()},
		cfg:    c.cfg,
	}

	if c.cfg.HomeURL != "" {
		if _, _, err := s.load(ctx, c.cfg.HomeURL); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to open registry session: %w", err)
		}
	}

	return s, nil
}

func (c *Client) Close() error {
	return nil
}

type Session struct {
	client    *http.Client
	cfg       Config
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// FetchCompany loads the search page of identifier once. The registry redirects a unique match
// to the company page.
func (s *Session) FetchCompany(ctx context.Context, identifier string) (domain.Company, error) {
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

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()

	doc, status, err := s.load(ctx, target)
	if err != nil {
		return domain.Company{}, err
	}

	if status != http.StatusOK {
		return domain.Company{}, fmt.Errorf("%w: registry answered %d", domain.ErrCompanyNotFound, status)
	}

	if !hasLandmark(doc, s.cfg.Selectors) {
		return domain.Company{}, fmt.Errorf("%w: no company page", domain.ErrCompanyNotFound)
	}

	return extract(doc, s.cfg.Selectors)
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.client.CloseIdleConnections()
	})

	return nil
}

func (s *Session) load(ctx context.Context, target string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s: %w", target, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse page: %w", err)
	}

	return doc, resp.StatusCode, nil
}
