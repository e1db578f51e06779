package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiq/internal/session"
	"github.com/abhisek/lexiq/internal/ui/theme"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show the latest debug snapshot of a scheduling mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := session.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.store.DebugRepo().Latest(cmd.Context(), string(mode))
		if err != nil {
			return fmt.Errorf("load debug snapshot: %w", err)
		}
		out := cmd.OutOrStdout()
		if rec == nil {
			fmt.Fprintf(out, "No %s snapshot yet. Run lexiq queue first.\n", mode)
			return nil
		}

		var snap session.DebugSnapshot
		if err := json.Unmarshal(rec.Data, &snap); err != nil {
			return fmt.Errorf("decode debug snapshot: %w", err)
		}

		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%s  session %s", snap.Mode, rec.SessionID)))
		fmt.Fprintln(out, theme.Hint.Render(rec.CreatedAt.Local().Format("2006-01-02 15:04:05")))
		fmt.Fprintln(out, theme.Header.Render(fmt.Sprintf("%4s  %-24s  %4s  %8s  %s", "Rank", "Word", "Pos", "Attempts", "Category")))
		for _, e := range snap.TopN {
			fmt.Fprintln(out, theme.Body.Render(fmt.Sprintf("%4d  %-24s  %4d  %8d  %s", e.Rank, e.Word, e.Position, e.Attempts, e.Category)))
		}
		return nil
	},
}

func init() {
	debugCmd.Flags().String("mode", "priority", "Scheduling mode: priority or chain")
}
