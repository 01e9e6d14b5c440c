package registry

import (
	"errors"
	"fmt"
	"innbot/internal/core/port"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverBrowser = "browser"
	DriverHTTP    = "http"

	DefaultSearchURL     = "https://www.rusprofile.ru/search"
	DefaultHomeURL       = "https://www.rusprofile.ru/"
	DefaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	DefaultRenderTimeout = 10 * time.Second
)

var (
	ErrSessionClosed = errors.New("lookup session closed")
	ErrInvalidConfig = errors.New("invalid registry config")
)

type Selectors struct {
	Landmark  string
	ShortName string
	FullName  string
	Address   string
}

var DefaultSelectors = Selectors{
	Landmark:  "div.company-header",
	ShortName: `h1[itemprop="name"]`,
	FullName:  "#clip_name-long",
	Address:   "#clip_address",
}

type Config struct {
	// Driver is DriverBrowser (headless Chrome via go-rod) or DriverHTTP (plain page download).
	Driver    string
	SearchURL string
	HomeURL   string
	UserAgent string
	// BrowserURL is the DevTools endpoint of an already running browser. Empty launches one.
	BrowserURL    string
	RenderTimeout time.Duration
	Selectors     Selectors
}

func DefaultConfig() Config {
	return Config{
		Driver:        DriverBrowser,
		SearchURL:     DefaultSearchURL,
		HomeURL:       DefaultHomeURL,
		UserAgent:     DefaultUserAgent,
		RenderTimeout: DefaultRenderTimeout,
		Selectors:     DefaultSelectors,
	}
}

// ConfigFromViper reads the registry.* keys, keeping defaults for anything unset.
func ConfigFromViper() Config {
	cfg := DefaultConfig()

	setString(&cfg.Driver, "registry.driver")
	setString(&cfg.SearchURL, "registry.search_url")
	setString(&cfg.UserAgent, "registry.user_agent")
	setString(&cfg.BrowserURL, "registry.browser_url")
	setString(&cfg.Selectors.Landmark, "registry.selectors.landmark")
	setString(&cfg.Selectors.ShortName, "registry.selectors.short_name")
	setString(&cfg.Selectors.FullName, "registry.selectors.full_name")
	setString(&cfg.Selectors.Address, "registry.selectors.address")

	if viper.IsSet("registry.home_url") {
		cfg.HomeURL = viper.GetString("registry.home_url")
	}
	if d := viper.GetDuration("registry.render_timeout"); d > 0 {
		cfg.RenderTimeout = d
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	if c.SearchURL == "" {
		return fmt.Errorf("%w: search url is empty", ErrInvalidConfig)
	}
	if u, err := url.Parse(c.SearchURL); err != nil || u.Host == "" {
		return fmt.Errorf("%w: invalid search url %q", ErrInvalidConfig, c.SearchURL)
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = DefaultRenderTimeout
	}

	return nil
}

// Finder is a port.CompanyFinder holding resources that outlive single sessions.
type Finder interface {
	port.CompanyFinder
	Close() error
}

// NewFinder returns the lookup client selected by cfg.Driver.
func NewFinder(cfg Config) (Finder, error) {
	switch cfg.Driver {
	case DriverBrowser:
		return NewBrowserClient(cfg)
	case DriverHTTP:
		return NewClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
