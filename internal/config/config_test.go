package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/mdpress/internal/domain"
)

func TestNormalizeSiteURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://blog.example.com", "https://blog.example.com/xmlrpc.php"},
		{"https://blog.example.com/", "https://blog.example.com/xmlrpc.php"},
		{"http://example.com/wp/", "http://example.com/wp/xmlrpc.php"},
		{"https://example.com/xmlrpc.php", "https://example.com/xmlrpc.php"},
		{"example.com", "https://example.com/xmlrpc.php"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeSiteURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSiteURL_Invalid(t *testing.T) {
	for _, input := range []string{"", "ftp://example.com", "https://"} {
		t.Run(input, func(t *testing.T) {
			_, err := NormalizeSiteURL(input)
			assert.ErrorIs(t, err, domain.ErrConfig)
		})
	}
}

func TestSiteConfig_Validate(t *testing.T) {
	ok := SiteConfig{URL: "example.com", User: "admin", Password: "secret", BlogID: 1}
	assert.NoError(t, ok.Validate())

	missing := ok
	missing.Password = ""
	assert.ErrorIs(t, missing.Validate(), domain.ErrConfig)

	badURL := ok
	badURL.URL = "gopher://example.com"
	assert.ErrorIs(t, badURL.Validate(), domain.ErrConfig)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".mdpress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Site.BlogID)
	assert.Equal(t, 30*time.Second, cfg.Site.Timeout)
	assert.Equal(t, "draft", cfg.Paths.Drafts)
	assert.Equal(t, 10, cfg.Show.Number)
	assert.Equal(t, "post_date", cfg.Show.OrderBy)
	assert.Equal(t, "DESC", cfg.Show.Order)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(".", "terms.db"), cfg.Paths.CachePath())
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, `
site:
  url: https://blog.example.com
  user: writer
  timeout: 5s
paths:
  root: /srv/blog
  cache: terms.yaml
show:
  order: asc
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MDPRESS_SITE_PASSWORD=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("MDPRESS_SITE_PASSWORD") })

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("user", "", "")
	flags.Int("number", 0, "")
	require.NoError(t, flags.Parse([]string{"--user", "editor", "--number", "3"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example.com", cfg.Site.URL)
	assert.Equal(t, "editor", cfg.Site.User)
	assert.Equal(t, "from-dotenv", cfg.Site.Password)
	assert.Equal(t, 5*time.Second, cfg.Site.Timeout)
	assert.Equal(t, 3, cfg.Show.Number)
	assert.Equal(t, "ASC", cfg.Show.Order)
	assert.Equal(t, "/srv/blog/terms.yaml", cfg.Paths.CachePath())
	assert.Equal(t, "/srv/blog/draft", cfg.Paths.DraftsDir())
	assert.NoError(t, cfg.Site.Validate())
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeConfig(t, dir, `
logging:
  level: loud
`)

	_, err := Load(path, nil)
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
