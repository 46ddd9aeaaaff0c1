package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/cinemadb-backend/internal/app"
	"github.com/heartmarshall/cinemadb-backend/internal/config"
	"github.com/heartmarshall/cinemadb-backend/internal/ingest"
	"github.com/heartmarshall/cinemadb-backend/pkg/ctxutil"
)

var errDryRun = errors.New("dry run: rolled back")

type job func(ctx context.Context, a *app.App) ([]ingest.Report, error)

// RootCmd is the ingest command tree. Every job subcommand loads config,
// connects, runs and reports; --dry-run runs the job in one transaction and
// rolls it back.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Load IMDb and TMDb data into the catalog database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "path to the YAML config file (default $CONFIG_PATH or ./config.yaml)")
	cmd.PersistentFlags().Bool("dry-run", false, "run inside a transaction and roll it back")

	cmd.AddCommand(
		versionCmd(),
		jobCmd("reference", "Sync movie types, genres, countries and professions.", func(ctx context.Context, a *app.App) ([]ingest.Report, error) {
			return a.SyncReference(ctx)
		}),
		jobCmd("movies", "Ingest title.basics.", single((*app.App).IngestMovies)),
		jobCmd("persons", "Ingest name.basics.", single((*app.App).IngestPersons)),
		jobCmd("principals", "Ingest title.principals. Run after movies and persons.", single((*app.App).IngestPrincipals)),
		jobCmd("tmdb", "Upsert TMDb movie details from sources.tmdb_file.", single((*app.App).IngestTMDb)),
		jobCmd("users", "Register users from sources.users_file.", single((*app.App).IngestUsers)),
		jobCmd("all", "Run reference, movies, persons and principals in order.", all),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion())
			return err
		},
	}
}

func single(run func(*app.App, context.Context) (ingest.Report, error)) job {
	return func(ctx context.Context, a *app.App) ([]ingest.Report, error) {
		rep, err := run(a, ctx)
		return []ingest.Report{rep}, err
	}
}

func all(ctx context.Context, a *app.App) ([]ingest.Report, error) {
	reports, err := a.SyncReference(ctx)
	if err != nil {
		return reports, err
	}
	for _, run := range []func(*app.App, context.Context) (ingest.Report, error){
		(*app.App).IngestMovies,
		(*app.App).IngestPersons,
		(*app.App).IngestPrincipals,
	} {
		rep, err := run(a, ctx)
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func jobCmd(use, short string, run job) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			dryRun, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return err
			}

			cfg, err := config.LoadFile(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := app.NewLogger(cfg.Log)

			ctx, stop := signal.NotifyContext(ctxutil.WithJob(cmd.Context(), use), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = execute(ctx, cfg, logger, dryRun, run)
			if err != nil {
				logger.ErrorContext(ctx, "ingest failed", slog.String("error", err.Error()))
			}
			return err
		},
	}
}

func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, dryRun bool, run job) error {
	logger.InfoContext(ctx, "starting ingest",
		slog.String("version", app.BuildVersion()),
		slog.Bool("dry_run", dryRun),
	)

	a, err := app.Bootstrap(ctx, cfg, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	var reports []ingest.Report
	if !dryRun {
		reports, err = run(ctx, a)
	} else {
		err = a.Tx.RunInTx(ctx, func(ctx context.Context) error {
			var runErr error
			reports, runErr = run(ctx, a)
			if runErr != nil {
				return runErr
			}
			return errDryRun
		})
		if errors.Is(err, errDryRun) {
			err = nil
		}
	}

	for _, rep := range reports {
		logger.InfoContext(ctx, "report", rep.LogAttrs()...)
	}
	return err
}
