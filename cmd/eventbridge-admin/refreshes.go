package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tinydevcrm/eventbridge/internal/bootstrap"
	"github.com/tinydevcrm/eventbridge/internal/data"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/service"
)

type listRefreshesOptions struct {
	Status string
	Limit  int
}

func parseListRefreshesFlags(args []string) (listRefreshesOptions, error) {
	fs := flag.NewFlagSet("list-refreshes", flag.ContinueOnError)
	opts := listRefreshesOptions{}
	fs.StringVar(&opts.Status, "status", "NEW", "refresh status to list (NEW or SENT)")
	fs.IntVar(&opts.Limit, "limit", 100, "maximum rows to return")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runListRefreshes(cmdCtx *commandContext, args []string) error {
	opts, err := parseListRefreshesFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	refreshes := service.NewRefreshLogService(service.RefreshLogServiceOptions{
		RefreshLog: data.NewRefreshLogRepo(db),
	})
	events, err := refreshes.ListByStatus(ctx, model.RefreshStatus(strings.ToUpper(opts.Status)), opts.Limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tJOB\tVIEW\tSTATUS\tCREATED (UTC)"); err != nil {
		return err
	}
	for _, ev := range events {
		if err := writef(tw, "%d\t%d\t%d\t%s\t%s\n",
			ev.ID, ev.JobID, ev.ViewID, ev.Status,
			ev.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush refresh table: %w", err)
	}

	cmdCtx.Logger.Info("list refreshes complete", "rows", len(events))
	return nil
}

func runReplayPending(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("replay-pending", flag.ContinueOnError)
	topic := fs.String("topic", cmdCtx.Config.Broker.Topic, "notification topic to publish on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	refreshes := service.NewRefreshLogService(service.RefreshLogServiceOptions{
		RefreshLog: data.NewRefreshLogRepo(db),
	})
	replayed, err := refreshes.ReplayPending(ctx, *topic)
	if err != nil {
		return err
	}

	cmdCtx.Logger.Info("replay pending complete", "topic", *topic, "notifications", replayed)
	return nil
}
