package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile = cfgPath
	t.Cleanup(func() { configFile = "" })

	root := &cobra.Command{Use: "weathercard", SilenceUsage: true}
	root.AddCommand(lookupCmd())
	root.AddCommand(themeCmd())

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "weather:\n  api_key: test-key\n  base_url: " + baseURL + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLookupFailurePrintsAlertOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	stdout, stderr, err := runCLI(t, writeConfig(t, srv.URL), "lookup", "Atlantis")
	require.Error(t, err)
	require.Equal(t, "! City not found\n", stdout)
	require.NotContains(t, stderr, "Error:")
}

func TestLookupSuccessRendersCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Sao Paulo" {
			http.Error(w, "unexpected city", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"São Paulo","dt":1500,"sys":{"country":"BR","sunrise":1000,"sunset":2000},
			"main":{"temp":24.5,"humidity":80},"wind":{"speed":2},"weather":[{"main":"Rain","description":"light rain"}]}`))
	}))
	defer srv.Close()

	stdout, _, err := runCLI(t, writeConfig(t, srv.URL), "lookup", "Sao", "Paulo")
	require.NoError(t, err)
	require.Contains(t, stdout, "City:        São Paulo, BR\n")
	require.Contains(t, stdout, "Temperature: 25°C\n")
	require.Contains(t, stdout, "Theme:       rain (assets/rain.png)\n")
}

func TestConfigErrorsStillReported(t *testing.T) {
	_, stderr, err := runCLI(t, filepath.Join(t.TempDir(), "missing.yaml"), "lookup", "London")
	require.Error(t, err)
	require.Contains(t, stderr, "Error:")
}

func TestThemeCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "", "theme", "Rain", "--night")
	require.NoError(t, err)
	require.Equal(t, "Theme: winter\nImage: assets/rain.png\n", stdout)
}
