package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/panel-peace/internal/apiclient"
	"github.com/jonathan/panel-peace/internal/config"
	"github.com/jonathan/panel-peace/internal/observability"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCmd returns a command carrying the root flags, parsed from args,
// with every flag variable reset first.
func newTestCmd(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	configPath, apiURL, sessionPath, verbose = "", "", "", false
	progressDone, progressTotal, progressPercent = 0, 0, 0

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&configPath, "config", "", "")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "")
	cmd.Flags().StringVar(&sessionPath, "session", "", "")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "")
	cmd.Flags().IntVar(&progressDone, "done", 0, "")
	cmd.Flags().IntVar(&progressTotal, "total", 0, "")
	cmd.Flags().IntVar(&progressPercent, "percent", 0, "")
	require.NoError(t, cmd.ParseFlags(args))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PANELPEACE_API_URL", "")
	cmd, _ := newTestCmd(t)

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().APIURL, cfg.APIURL)
	assert.Equal(t, config.SessionStoreSQLite, cfg.SessionStore)
	assert.Equal(t, 7, cfg.UpcomingDays)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_url": "http://file.example:8080",
		"upcoming_days": 21,
		"session_store": "memory"
	}`), 0o644))
	t.Setenv("PANELPEACE_API_URL", "http://env.example:8080")
	t.Setenv("DATABASE_URL", "postgres://env/panel")

	cmd, _ := newTestCmd(t, "--config", path)
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example:8080", cfg.APIURL)
	assert.Equal(t, "postgres://env/panel", cfg.DatabaseURL)
	assert.Equal(t, 21, cfg.UpcomingDays)

	cmd, _ = newTestCmd(t, "--config", path, "--api-url", "http://flag.example:9000", "-v")
	cfg, err = loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example:9000", cfg.APIURL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	cmd, _ := newTestCmd(t, "--api-url", "not a url")
	_, err := loadConfig(cmd)
	assert.ErrorContains(t, err, "api_url")
}

func TestProgressRequest(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, done, total, percent *int)
	}{
		{name: "neither", wantErr: true},
		{name: "both", args: []string{"--done", "3", "--percent", "20"}, wantErr: true},
		{
			name: "count with default total",
			args: []string{"--done", "3"},
			check: func(t *testing.T, done, total, percent *int) {
				require.NotNil(t, done)
				assert.Equal(t, 3, *done)
				assert.Nil(t, total)
				assert.Nil(t, percent)
			},
		},
		{
			name: "count with total",
			args: []string{"--done", "3", "--total", "4"},
			check: func(t *testing.T, done, total, _ *int) {
				require.NotNil(t, total)
				assert.Equal(t, 4, *total)
			},
		},
		{
			name: "percent",
			args: []string{"--percent", "40"},
			check: func(t *testing.T, done, _, percent *int) {
				assert.Nil(t, done)
				require.NotNil(t, percent)
				assert.Equal(t, 40, *percent)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCmd(t, tt.args...)
			req, err := progressRequest(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, req.Completed, req.Total, req.Percent)
		})
	}
}

func TestParseID(t *testing.T) {
	_, err := parseID("project", "nope")
	assert.EqualError(t, err, `invalid project ID "nope"`)

	id, err := parseID("step", "2a6d3c14-5f7b-4e2d-8b90-0c1d2e3f4a05")
	require.NoError(t, err)
	assert.Equal(t, "2a6d3c14-5f7b-4e2d-8b90-0c1d2e3f4a05", id.String())
}

func TestWithClient_SessionPersistsAcrossCommands(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token": "tok-cli",
				"user":  map[string]any{"id": "c0ffee00-1111-4222-8333-444455556666", "email": "ed@studio.test", "role": "editor"},
			})
		case "/deadlines/upcoming":
			if r.Header.Get("Authorization") != "Bearer tok-cli" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			_, _ = w.Write([]byte(`{"deadlines":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	session := filepath.Join(t.TempDir(), "session.db")
	args := []string{"--api-url", api.URL, "--session", session}

	cmd, _ := newTestCmd(t, args...)
	err := withClient(cmd, func(ctx context.Context, c *apiclient.Client, _ *observability.Printer) error {
		_, err := c.Login(ctx, "ed@studio.test", "pw")
		return err
	})
	require.NoError(t, err)

	cmd, out := newTestCmd(t, args...)
	err = withClient(cmd, func(ctx context.Context, c *apiclient.Client, p *observability.Printer) error {
		rows, err := c.UpcomingDeadlines(ctx, 0)
		if err != nil {
			return err
		}
		p.PrintDeadlines("UPCOMING DEADLINES", rows)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Nothing due")

	cmd, _ = newTestCmd(t, args...)
	err = withClient(cmd, func(ctx context.Context, c *apiclient.Client, _ *observability.Printer) error {
		return c.Logout(ctx)
	})
	require.NoError(t, err)

	cmd, _ = newTestCmd(t, args...)
	err = withClient(cmd, func(ctx context.Context, c *apiclient.Client, _ *observability.Printer) error {
		_, err := c.UpcomingDeadlines(ctx, 0)
		return err
	})
	assert.True(t, apiclient.IsUnauthorized(err))
}
