// Package cli implements taskctl, the command-line client of the task API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taskManager/internal/client"
	"taskManager/internal/config"
	"taskManager/internal/credential"
	"taskManager/internal/identity"
	"taskManager/internal/logger"
	"taskManager/internal/notify"
	"taskManager/internal/orchestrator"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	DeleteToken() error
}

type App struct {
	ConfigPath  string
	Format      string
	Pretty      bool
	Verbose     bool
	BaseURL     string
	ViewerEmail string
	ViewerName  string

	// Fs is where uploaded files are read from.
	Fs afero.Fs
	// OpenCredentials opens the token store; defaults to the system keyring.
	OpenCredentials func() (TokenStore, error)

	cfg       *config.Config
	creds     TokenStore
	api       *client.Client
	notes     *notify.Store
	ownsNotes bool
	orch      *orchestrator.Orchestrator
}

func NewRootCmd() *cobra.Command {
	return NewRootCmdWithApp(&App{})
}

// NewRootCmdWithApp builds the command tree around app; unset dependencies get defaults.
func NewRootCmdWithApp(app *App) *cobra.Command {
	if app.Fs == nil {
		app.Fs = afero.NewOsFs()
	}
	if app.OpenCredentials == nil {
		app.OpenCredentials = func() (TokenStore, error) { return credential.Open() }
	}

	cmd := &cobra.Command{
		Use:          "taskctl",
		Short:        "Command-line client for the shared task manager",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  taskctl login --token "$JWT"
  taskctl tasks list --category assigned --sort priority --order desc
  taskctl tasks share-bulk --task 1f0c... --task 9a2b... --user u2 --user u3
  taskctl watch
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Verbose {
			if err := logger.Init(true); err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
		}
		switch app.Format {
		case "json", "yaml":
			return nil
		}
		return fmt.Errorf("unknown format %q (json|yaml)", app.Format)
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		app.close()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TASKMGR_CONFIG", ""), "Path to config.yml")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKMGR_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log requests to stderr")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "API base URL (overrides client.base_url)")
	cmd.PersistentFlags().StringVar(&app.ViewerEmail, "viewer-email", "", "Your email, when the token does not carry one")
	cmd.PersistentFlags().StringVar(&app.ViewerName, "viewer-name", "", "Your display name, when the token does not carry one")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newNotificationsCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newWatchCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func (a *App) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	if a.BaseURL != "" {
		cfg.Client.BaseURL = a.BaseURL
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *App) credentials() (TokenStore, error) {
	if a.creds != nil {
		return a.creds, nil
	}
	creds, err := a.OpenCredentials()
	if err != nil {
		return nil, err
	}
	a.creds = creds
	return creds, nil
}

// token returns the stored token, or "" when none is stored.
func (a *App) token() (string, error) {
	creds, err := a.credentials()
	if err != nil {
		return "", err
	}
	tok, err := creds.Token()
	if errors.Is(err, credential.ErrNoToken) {
		return "", nil
	}
	return tok, err
}

// viewer is read from the token payload and completed with flags and config.
func (a *App) viewer() (identity.Viewer, error) {
	cfg, err := a.config()
	if err != nil {
		return identity.Viewer{}, err
	}
	tok, err := a.token()
	if err != nil {
		return identity.Viewer{}, err
	}

	var v identity.Viewer
	if tok != "" {
		claims, err := identity.ParseToken(tok, "")
		if err != nil {
			return identity.Viewer{}, fmt.Errorf("reading stored token: %w", err)
		}
		v = claims.Viewer()
	}
	if v.Email == "" {
		v.Email = firstNonEmpty(a.ViewerEmail, cfg.Client.ViewerEmail)
	}
	if v.Name == "" {
		v.Name = firstNonEmpty(a.ViewerName, cfg.Client.ViewerName)
	}
	return v, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (a *App) client() (*client.Client, error) {
	if a.api != nil {
		return a.api, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	tok, err := a.token()
	if err != nil {
		return nil, err
	}
	a.api = client.New(cfg.Client.BaseURL,
		client.WithToken(tok),
		client.WithRetries(cfg.Client.Retries),
		client.WithTimeout(cfg.Client.RequestTimeout))
	return a.api, nil
}

func (a *App) notifications() (*notify.Store, error) {
	if a.notes != nil {
		return a.notes, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	path := cfg.Client.NotificationsDB
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := afero.NewOsFs().MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	store, err := notify.NewStore(path)
	if err != nil {
		return nil, err
	}
	a.notes = store
	a.ownsNotes = true
	return store, nil
}

// orchestrator wires the client, notification store and user directory for the current viewer.
func (a *App) orchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	if a.orch != nil {
		return a.orch, nil
	}
	api, err := a.client()
	if err != nil {
		return nil, err
	}
	notes, err := a.notifications()
	if err != nil {
		return nil, err
	}
	viewer, err := a.viewer()
	if err != nil {
		return nil, err
	}

	o := orchestrator.New(api, notes, viewer)
	o.SetNames(a.directory(ctx, api))
	a.orch = o
	return o, nil
}

// directory loads user display names. A failure only costs prettier names.
func (a *App) directory(ctx context.Context, api *client.Client) identity.Names {
	names := identity.Names{}
	users, err := api.ListUsers(ctx, "")
	if err != nil {
		logger.Warn("CLI: loading user directory", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

func (a *App) close() {
	if a.notes != nil && a.ownsNotes {
		if err := a.notes.Close(); err != nil {
			logger.Error("CLI: closing notification store", err)
		}
		a.notes = nil
		a.orch = nil
	}
	logger.Sync()
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	out := cmd.OutOrStdout()
	if app.Format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(out)
	if app.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
