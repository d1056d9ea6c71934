package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/eventstore"
)

// History prints the newest runs recorded in the history database.
func (a *App) History(ctx context.Context, limit int) error {
	if a.store == nil {
		return errors.ConfigError("run history is disabled").
			WithContext("hint", "set --history-db or output.history_db").
			Build()
	}
	p := eventstore.NewRunHistoryProjection(a.store, limit)
	if err := p.Rebuild(ctx); err != nil {
		return err
	}
	return WriteHistory(a.opts.Stdout, p.History())
}

// WriteHistory renders run summaries as an aligned table.
func WriteHistory(w io.Writer, runs []eventstore.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN\tCOMMAND\tSTATUS\tDRY RUN\tBUILT\tDEPLOYED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			r.StartedAt.Format(time.DateTime),
			r.RunID,
			orDash(r.Command),
			r.Status,
			r.DryRun,
			orDash(strings.Join(r.Built, ",")),
			orDash(strings.Join(r.Deployed, ",")),
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
