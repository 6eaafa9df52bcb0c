package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hopebridge/hopebridge/cmd/hopebridge/cli"
	"github.com/hopebridge/hopebridge/internal/admin"
	"github.com/hopebridge/hopebridge/internal/app"
	"github.com/hopebridge/hopebridge/internal/backend"
	"github.com/hopebridge/hopebridge/internal/platform/db"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/tui"
)

// terminalCatalog reads straight from the API, bypassing the cache.
func terminalCatalog() (*app.Config, *admin.Catalog, error) {
	cfg, err := app.LoadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	client := backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, app.NewLogger(cfg))
	return cfg, admin.NewCatalog(client, nil), nil
}

func tokenOr(flag string, cfg *app.Config) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.APIServiceToken != "" {
		return cfg.APIServiceToken, nil
	}
	return "", errors.New("no API token: pass --token or set API_SERVICE_TOKEN")
}

func newBrowseCmd() *cobra.Command {
	var token, dir string
	cmd := &cobra.Command{
		Use:   "browse <resource>",
		Short: "Browse an admin listing in the terminal",
		Long: `Browse an admin listing with search, filters, pagination and export.

Keys:
  /        search (enter keeps, esc clears)
  f, tab   cycle filter option, next filter
  n, p     next, previous page
  e        export the filtered rows to CSV
  q        quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, catalog, err := terminalCatalog()
			if err != nil {
				return err
			}
			tok, err := tokenOr(token, cfg)
			if err != nil {
				return err
			}
			entry, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown resource %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.APITimeout)
			model, err := entry.Browser(ctx, tok, shared.RoleAdmin, tui.WithExportDir(dir))
			cancel()
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "API bearer token (default API_SERVICE_TOKEN)")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory receiving exports")
	return cmd
}

func newExportCmd() *cobra.Command {
	var token string
	opts := cli.ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Export an admin listing to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, catalog, err := terminalCatalog()
			if err != nil {
				return err
			}
			if opts.Token, err = tokenOr(token, cfg); err != nil {
				return err
			}
			opts.Resource = args[0]
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			if code := cli.ExportCommand(cmd.Context(), catalog, opts); code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "API bearer token (default API_SERVICE_TOKEN)")
	cmd.Flags().StringVarP(&opts.Search, "query", "q", "", "Search text")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "Filter as key=value, repeatable")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file, - for stdout (default <Title>-<date>.csv)")
	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "Directory for the default file name")
	return cmd
}

func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{Use: "jobs", Short: "Manage background jobs"}

	withJobs := func(cmd *cobra.Command, fn func(context.Context, *cli.JobsCLI) error) error {
		cfg, err := app.LoadConfig(envFile)
		if err != nil {
			return err
		}
		jc, err := cli.NewJobsCLI(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() { _ = jc.Close() }()
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		return fn(ctx, jc)
	}

	trigger := &cobra.Command{
		Use:   "trigger <name>",
		Short: "Enqueue a job now (cache:warm)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobs(cmd, func(ctx context.Context, jc *cli.JobsCLI) error {
				info, err := jc.Trigger(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
				return nil
			})
		},
	}
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show the default queue state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobs(cmd, func(ctx context.Context, jc *cli.JobsCLI) error {
				s, err := jc.InspectQueue(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d failed=%d\n",
					s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry, s.Failed)
				return nil
			})
		},
	}
	jobsCmd.AddCommand(trigger, stats)
	return jobsCmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the audit tables in PG_DSN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(envFile)
			if err != nil {
				return err
			}
			if cfg.PGDSN == "" {
				return errors.New("PG_DSN is not set")
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			applied, err := db.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", len(applied))
			return nil
		},
	}
}
