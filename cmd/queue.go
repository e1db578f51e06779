package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiq/internal/mastery"
	"github.com/abhisek/lexiq/internal/relgraph"
	"github.com/abhisek/lexiq/internal/session"
	"github.com/abhisek/lexiq/internal/store"
	"github.com/abhisek/lexiq/internal/ui/theme"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Build the next study session",
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		mode, err := session.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		c, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		svc, err := a.progress(ctx)
		if err != nil {
			return err
		}

		graphs := relgraph.NewGraphContext(c, a.relationCache(ctx), a.log)
		planner := session.NewPlanner(graphs, a.cfg.Session())
		q, err := planner.Build(ctx, session.Input{
			Catalog:  c,
			Progress: svc.Snapshot(),
			Mode:     mode,
			Now:      time.Now(),
		})
		if err != nil {
			return fmt.Errorf("build queue: %w", err)
		}

		data, err := json.Marshal(q.Debug)
		if err != nil {
			return fmt.Errorf("encode debug snapshot: %w", err)
		}
		if err := a.store.DebugRepo().Save(ctx, store.DebugRecord{
			Mode:      string(q.Mode),
			SessionID: q.SessionID,
			Data:      data,
			CreatedAt: time.Now(),
		}); err != nil {
			a.log.Warn("save debug snapshot", "error", err)
		}
		a.log.Info("queue built", "session", q.SessionID, "mode", q.Mode, "items", len(q.Items))

		if asJSON {
			return printJSON(cmd, q)
		}
		printQueue(cmd, q, svc, limit)
		return nil
	},
}

func init() {
	queueCmd.Flags().String("catalog", "", "Catalog file (.json or .xlsx)")
	queueCmd.Flags().String("mode", "priority", "Scheduling mode: priority or chain")
	queueCmd.Flags().Int("limit", 25, "Number of queue entries to print (0 for all)")
	queueCmd.Flags().Int("top", 0, "Debug snapshot size (overrides config)")
	queueCmd.Flags().Int("max-new", 0, "Cap on boosted new items (overrides config)")
	queueCmd.Flags().Bool("json", false, "Print the full queue as JSON")
}

func printQueue(cmd *cobra.Command, q *session.Queue, svc *mastery.Service, limit int) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Session %s (%s)", q.SessionID, q.Mode)))

	items := q.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	fmt.Fprintln(out, theme.Header.Render(fmt.Sprintf("%4s  %-24s  %-14s  %4s  %s", "#", "Word", "Band", "Pos", "Attempts")))
	for i, id := range items {
		p := mastery.Clamp(svc.Get(id))
		band := p.Band()
		fmt.Fprintf(out, "%4d  %-24s  %s  %4d  %d\n",
			i+1, id,
			theme.Band(band).Render(fmt.Sprintf("%-14s", band)),
			p.Position, p.Attempts())
	}
	if rest := len(q.Items) - len(items); rest > 0 {
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("... %d more", rest)))
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
