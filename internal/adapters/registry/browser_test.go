package registry

import (
	"innbot/internal/core/domain"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browserURL returns the DevTools endpoint of a browser for the test, launching a local one
// when INNBOT_TEST_BROWSER_URL is unset.
func browserURL(t *testing.T) string {
	t.Helper()

	if u := os.Getenv("INNBOT_TEST_BROWSER_URL"); u != "" {
		return u
	}

	path, found := launcher.LookPath()
	if !found {
		t.Skip("no browser installed")
	}

	l := launcher.New().Bin(path).Headless(true).Leakless(false)
	u, err := l.Launch()
	if err != nil {
		t.Skipf("failed to launch browser: %v", err)
	}
	t.Cleanup(l.Kill)

	return u
}

func newTestBrowserClient(t *testing.T, f *fakeRegistry, renderTimeout time.Duration) *BrowserClient {
	t.Helper()

	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.SearchURL = srv.URL + "/search"
	cfg.HomeURL = srv.URL + "/"
	cfg.BrowserURL = browserURL(t)
	cfg.RenderTimeout = renderTimeout

	client, err := NewBrowserClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestBrowserSession_FetchCompany(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    domain.Company
		wantErr error
	}{
		{name: "server rendered", page: companyPage, want: acmeCompany},
		{name: "rendered by script", page: scriptedPage, want: acmeCompany},
		{name: "never rendered", page: loadingPage, wantErr: domain.ErrCompanyNotFound},
		{name: "partial fields", page: partialPage, wantErr: domain.ErrCompanyNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry := &fakeRegistry{page: tc.page}
			client := newTestBrowserClient(t, registry, 2*time.Second)

			session, err := client.OpenSession(t.Context())
			require.NoError(t, err)
			defer session.Close()

			got, err := session.FetchCompany(t.Context(), "7719286104")

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, int64(1), registry.searches.Load())
		})
	}
}

func TestBrowserSession_CookiesAreNotShared(t *testing.T) {
	registry := &fakeRegistry{page: companyPage}
	client := newTestBrowserClient(t, registry, 2*time.Second)

	for range 2 {
		session, err := client.OpenSession(t.Context())
		require.NoError(t, err)

		_, err = session.FetchCompany(t.Context(), "7719286104")
		require.NoError(t, err)

		require.NoError(t, session.Close())
	}

	_, cookies := registry.seen()
	assert.Equal(t, []string{"1", "2"}, cookies)
}

func TestBrowserSession_Close(t *testing.T) {
	client := newTestBrowserClient(t, &fakeRegistry{page: companyPage}, time.Second)

	session, err := client.OpenSession(t.Context())
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, err = session.FetchCompany(t.Context(), "7719286104")
	require.ErrorIs(t, err, ErrSessionClosed)
}
