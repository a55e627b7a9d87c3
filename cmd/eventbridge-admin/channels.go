package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/tinydevcrm/eventbridge/internal/bootstrap"
	"github.com/tinydevcrm/eventbridge/internal/data"
	"github.com/tinydevcrm/eventbridge/internal/domain/model"
)

type listChannelsOptions struct {
	JobID      int64
	Owner      string
	All        bool
	Limit      int
	ShowClosed bool
}

func parseListChannelsFlags(args []string) (listChannelsOptions, error) {
	fs := flag.NewFlagSet("list-channels", flag.ContinueOnError)
	opts := listChannelsOptions{}
	fs.Int64Var(&opts.JobID, "job", 0, "filter by cron job id")
	fs.StringVar(&opts.Owner, "owner", "", "filter by owner")
	fs.BoolVar(&opts.All, "all", false, "list channels for every owner and job")
	fs.IntVar(&opts.Limit, "limit", 100, "maximum rows to return")
	fs.BoolVar(&opts.ShowClosed, "show-closed", false, "include CLOSED channels")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if !opts.All && opts.JobID == 0 && opts.Owner == "" {
		return opts, errors.New("provide -job, -owner, or -all")
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	return opts, nil
}

type channelRow struct {
	PublicID  uuid.UUID
	Owner     string
	JobID     int64
	Status    model.ChannelStatus
	CreatedAt time.Time
}

func queryChannels(ctx context.Context, db *sql.DB, opts listChannelsOptions) ([]channelRow, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if opts.JobID != 0 {
		where = append(where, fmt.Sprintf("job_id = $%d", len(args)+1))
		args = append(args, opts.JobID)
	}
	if opts.Owner != "" {
		where = append(where, fmt.Sprintf("owner = $%d", len(args)+1))
		args = append(args, opts.Owner)
	}
	if !opts.ShowClosed {
		where = append(where, "status <> 'CLOSED'")
	}

	query := "SELECT public_identifier, owner, job_id, status, created_at FROM channels"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at LIMIT $%d", len(args)+1)
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	result := make([]channelRow, 0, opts.Limit)
	for rows.Next() {
		var row channelRow
		if scanErr := rows.Scan(&row.PublicID, &row.Owner, &row.JobID, &row.Status, &row.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("scan channel row: %w", scanErr)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func runListChannels(cmdCtx *commandContext, args []string) error {
	opts, err := parseListChannelsFlags(args)
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

	channels, err := queryChannels(ctx, db, opts)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "CHANNEL\tOWNER\tJOB\tSTATUS\tCREATED (UTC)"); err != nil {
		return err
	}
	for _, row := range channels {
		if err := writef(tw, "%s\t%s\t%d\t%s\t%s\n",
			row.PublicID, row.Owner, row.JobID, row.Status,
			row.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush channel table: %w", err)
	}

	cmdCtx.Logger.Info("list channels complete", "rows", len(channels))
	return nil
}

type suspendChannelOptions struct {
	ID  string
	Yes bool
}

func parseSuspendChannelFlags(args []string) (suspendChannelOptions, error) {
	fs := flag.NewFlagSet("suspend-channel", flag.ContinueOnError)
	opts := suspendChannelOptions{}
	fs.StringVar(&opts.ID, "id", "", "channel public identifier")
	fs.BoolVar(&opts.Yes, "yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.ID == "" {
		return opts, errors.New("-id is required")
	}
	return opts, nil
}

func runSuspendChannel(cmdCtx *commandContext, args []string) error {
	opts, err := parseSuspendChannelFlags(args)
	if err != nil {
		return err
	}
	publicID, err := uuid.Parse(opts.ID)
	if err != nil {
		return fmt.Errorf("parse channel id: %w", err)
	}
	if !opts.Yes {
		return errors.New("suspending detaches any live listener; re-run with -yes to confirm")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
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

	repo := data.NewChannelRepo(db)
	ch, err := repo.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if ch.Status == model.ChannelStatusClosed {
		return fmt.Errorf("channel %s is closed", publicID)
	}

	// A live listener in the HTTP process keeps its attachment until the
	// stream ends; INACTIVE only blocks new attachments.
	if _, err := repo.SetStatus(ctx, publicID, model.ChannelStatusInactive); err != nil {
		return err
	}

	cmdCtx.Logger.Info("channel suspended", "channel", publicID, "previous_status", ch.Status)
	return nil
}
