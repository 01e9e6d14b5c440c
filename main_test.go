package main

import (
	"bytes"
	"fmt"
	"innbot/internal/core/domain"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyPage = `<html><body>
<div class="company-header"><h1 itemprop="name">ACME</h1></div>
<div id="clip_name-long">ACME LLC</div>
<div id="clip_address">Moscow, Red Square 1</div>
</body></html>`

func newRegistryServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "7719286104" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, companyPage)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func setupConfig(t *testing.T, searchURL string) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	setDefaults()
	viper.Set("registry.search_url", searchURL)
	viper.Set("registry.home_url", "")
	viper.Set("registry.render_timeout", "100ms")
	viper.Set("registry.driver", "http")
}

func TestRunLookup(t *testing.T) {
	srv := newRegistryServer(t)
	setupConfig(t, srv.URL+"/search")

	var out bytes.Buffer
	err := runLookup(t.Context(), &out, "7719286104, 1", false)

	require.NoError(t, err)
	assert.Equal(t,
		"Tax ID: 7719286104\nShort name: ACME\nFull name: ACME LLC\nAddress: Moscow, Red Square 1\n\n"+
			"No company found for tax ID 1.\n\n",
		out.String())
}

func TestRunLookup_JSON(t *testing.T) {
	srv := newRegistryServer(t)
	setupConfig(t, srv.URL+"/search")

	var out bytes.Buffer
	err := runLookup(t.Context(), &out, "7719286104", true)

	require.NoError(t, err)
	assert.JSONEq(t,
		`{"identifier":"7719286104","found":true,`+
			`"company":{"short_name":"ACME","full_name":"ACME LLC","address":"Moscow, Red Square 1"}}`,
		out.String())
}

func TestRunLookup_InvalidInput(t *testing.T) {
	setupConfig(t, "https://registry.example/search")

	var out bytes.Buffer
	err := runLookup(t.Context(), &out, "12a", false)

	require.ErrorIs(t, err, domain.ErrInvalidIdentifiers)
	assert.Empty(t, out.String())
}

func TestNewPipeline_UnknownCacheBackend(t *testing.T) {
	setupConfig(t, "https://registry.example/search")
	viper.Set("cache.backend", "memcached")

	_, err := newPipeline(t.Context(), nil)

	require.Error(t, err)
}

func TestNewCommandRegistry(t *testing.T) {
	setupConfig(t, "https://registry.example/search")

	r := newCommandRegistry(nil, nil, nil)

	assert.ElementsMatch(t, []string{
		domain.CommandStart,
		domain.CommandInline,
		domain.CommandReply,
		domain.CommandHide,
		domain.CommandHelp,
		domain.CommandHello,
		domain.CommandLookup,
	}, r.ListCommands())
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "innbot dev\n", out.String())
}
