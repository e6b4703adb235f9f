package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bearcrabs/bookbot/internal/config"
	"github.com/bearcrabs/bookbot/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-books-key"

func TestVersionPrintsBuildVersion(t *testing.T) {
	home := newHome(t)

	stdout, _, err := executeCLI(t, home, "", "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestConfigInitWritesDefaultsOnce(t *testing.T) {
	home := newHome(t)
	path := filepath.Join(home, ".config", "bookbot", "config.toml")

	stdout, _, err := executeCLI(t, home, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "list_limit = 5")

	_, _, err = executeCLI(t, home, "", "config", "init")
	require.ErrorIs(t, err, config.ErrConfigExists)

	_, _, err = executeCLI(t, home, "", "config", "init", "--force")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# loaded from "+path)
}

func TestConfigShowAppliesEnvironmentOverrides(t *testing.T) {
	home := newHome(t)
	t.Setenv("BOOKBOT_COMMANDS_LIST_LIMIT", "3")

	stdout, _, err := executeCLI(t, home, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "list_limit = 3")
	assert.Contains(t, stdout, "max_candidates = 25")
	assert.NotContains(t, stdout, "# loaded from")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	home := newHome(t)
	path := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[dialogue]\nselection_timeout = \"-1s\"\n"), 0o600))

	_, _, err := executeCLI(t, home, "", "--config", path, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "dialogue.selection_timeout must be positive")
}

func TestExplicitConfigMustExist(t *testing.T) {
	home := newHome(t)

	_, _, err := executeCLI(t, home, "", "--config", filepath.Join(home, "missing.toml"), "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestSearchJSONOutput(t *testing.T) {
	home := newHome(t)
	server := newBooksServer(t)
	t.Setenv("BOOKBOT_SEARCH_BASE_URL", server.URL)
	t.Setenv("BOOKBOT_GOOGLE_BOOKS_API_KEY", testAPIKey)

	stdout, _, err := executeCLI(t, home, "", "search", "dune", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var books []struct {
		Title   string
		Authors []string
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &books))
	require.Len(t, books, 3)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, []string{"Frank Herbert"}, books[0].Authors)
}

func TestSearchRendersResults(t *testing.T) {
	home := newHome(t)
	server := newBooksServer(t)
	t.Setenv("BOOKBOT_SEARCH_BASE_URL", server.URL)
	t.Setenv("GOOGLE_BOOKS_API_KEY", testAPIKey)

	stdout, _, err := executeCLI(t, home, "", "search", "dune", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Results for "dune"`)
	assert.Contains(t, stdout, "books: 2")
	assert.Contains(t, stdout, "Dune Messiah")
	assert.NotContains(t, stdout, "Children of Dune")
}

func TestSearchReadsAPIKeyFromSecretsDir(t *testing.T) {
	home := newHome(t)
	server := newBooksServer(t)
	t.Setenv("BOOKBOT_SEARCH_BASE_URL", server.URL)

	secretsDir := filepath.Join(home, ".config", "bookbot", "secrets")
	require.NoError(t, os.MkdirAll(secretsDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, config.SecretGoogleBooksAPIKey), []byte(testAPIKey+"\n"), 0o600))

	stdout, _, err := executeCLI(t, home, "", "search", "the", "hobbit", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "The Hobbit")
}

func TestSearchRequiresAPIKey(t *testing.T) {
	home := newHome(t)

	_, _, err := executeCLI(t, home, "", "search", "dune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve google books api key")
}

func TestServeRequiresDiscordToken(t *testing.T) {
	home := newHome(t)
	t.Setenv("BOOKBOT_GOOGLE_BOOKS_API_KEY", testAPIKey)

	_, _, err := executeCLI(t, home, "", "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve discord token")
}

func TestChatReviewFlow(t *testing.T) {
	home := newHome(t)
	server := newBooksServer(t)
	t.Setenv("BOOKBOT_SEARCH_BASE_URL", server.URL)
	t.Setenv("BOOKBOT_GOOGLE_BOOKS_API_KEY", testAPIKey)

	input := strings.Join([]string{
		"!review dune",
		"2",
		"4",
		"Slower than the first one.",
		"!myreviews",
		"!reading the hobbit",
		"!reading",
		"/quit",
	}, "\n")

	stdout, stderr, err := executeCLI(t, home, input, "chat", "--user", "Alice")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Connected to #general as Alice.")
	assert.Contains(t, stdout, "1. **Dune** by Frank Herbert")
	assert.Contains(t, stdout, "Review Submitted!")
	assert.Contains(t, stdout, "Reviews by Alice (1):")
	assert.Contains(t, stdout, "Slower than the first one.")
	assert.Contains(t, stdout, "Alice is currently reading")
}

func TestChatWithCustomPrefix(t *testing.T) {
	home := newHome(t)
	server := newBooksServer(t)
	t.Setenv("BOOKBOT_SEARCH_BASE_URL", server.URL)
	t.Setenv("BOOKBOT_GOOGLE_BOOKS_API_KEY", testAPIKey)
	t.Setenv("BOOKBOT_COMMANDS_PREFIX", "?")

	stdout, _, err := executeCLI(t, home, "!help\n?help\n", "chat")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(stdout, "BearCrabs Book Bot Commands"))
	assert.Contains(t, stdout, "`?reading")
}

// newHome returns an empty home directory and hides credentials from the
// surrounding environment. Call it before setting test variables.
func newHome(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		"DISCORD_TOKEN",
		"GOOGLE_API_KEY",
		"GOOGLE_BOOKS_API_KEY",
		"BOOKBOT_DISCORD_TOKEN",
		"BOOKBOT_GOOGLE_BOOKS_API_KEY",
	} {
		t.Setenv(name, "")
	}
	return t.TempDir()
}

func executeCLI(t *testing.T, home, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("PASSWORD_STORE_DIR", filepath.Join(home, ".password-store"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

type fakeVolume struct {
	Title   string
	Authors []string
}

var fakeCatalogue = map[string][]fakeVolume{
	"dune": {
		{Title: "Dune", Authors: []string{"Frank Herbert"}},
		{Title: "Dune Messiah", Authors: []string{"Frank Herbert"}},
		{Title: "Children of Dune", Authors: []string{"Frank Herbert"}},
	},
	"the hobbit": {
		{Title: "The Hobbit", Authors: []string{"J.R.R. Tolkien"}},
	},
}

// newBooksServer fakes the Google Books volumes endpoint.
func newBooksServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" || r.URL.Query().Get("key") != testAPIKey {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}

		volumes := fakeCatalogue[strings.ToLower(r.URL.Query().Get("q"))]
		items := make([]map[string]any, 0, len(volumes))
		for i, v := range volumes {
			items = append(items, map[string]any{
				"id": "vol-" + string(rune('a'+i)),
				"volumeInfo": map[string]any{
					"title":       v.Title,
					"authors":     v.Authors,
					"description": "About " + v.Title,
					"infoLink":    "https://books.example/" + strings.ReplaceAll(strings.ToLower(v.Title), " ", "-"),
				},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"totalItems": len(items), "items": items})
	}))
	t.Cleanup(server.Close)
	return server
}
