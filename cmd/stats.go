package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiq/internal/mastery"
	"github.com/abhisek/lexiq/internal/ui/components"
	"github.com/abhisek/lexiq/internal/ui/theme"
)

var bandOrder = []mastery.Band{
	mastery.BandMastered,
	mastery.BandNew,
	mastery.BandStillLearning,
	mastery.BandIncorrect,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetDuration("since")
		width, _ := cmd.Flags().GetInt("width")

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
		progress := svc.Snapshot()

		// With a catalog, unanswered words count as new.
		if path, _ := cmd.Flags().GetString("catalog"); path != "" {
			c, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			for _, w := range c.Words() {
				if _, ok := progress[w]; !ok {
					progress[w] = mastery.NewItemProgress(w)
				}
			}
		}

		counts := make(map[mastery.Band]int, len(bandOrder))
		mastered := 0
		for _, p := range progress {
			p = mastery.Clamp(p)
			counts[p.Band()]++
			if p.Level() == mastery.LevelMastered {
				mastered++
			}
		}

		var from time.Time
		if since > 0 {
			from = time.Now().Add(-since)
		}
		answers, err := a.store.EventRepo().AnswerStats(ctx, from)
		if err != nil {
			return fmt.Errorf("answer stats: %w", err)
		}

		out := cmd.OutOrStdout()
		total := len(progress)
		fmt.Fprintln(out, theme.Card.Render(theme.Title.Render(fmt.Sprintf("%d words, %d mastered", total, mastered))))
		for _, b := range bandOrder {
			bar := components.NewProgressBar(fmt.Sprintf("%-14s %4d", b, counts[b]), ratio(counts[b], total), true, width)
			bar.Fill = theme.BandColor(b)
			fmt.Fprintln(out, bar.View())
		}

		fmt.Fprintln(out)
		acc := components.NewProgressBar(fmt.Sprintf("%-14s %4d", "accuracy", answers.Total), answers.Accuracy(), true, width)
		fmt.Fprintln(out, acc.View())
		return nil
	},
}

func init() {
	statsCmd.Flags().String("catalog", "", "Count unanswered catalog words as new")
	statsCmd.Flags().Duration("since", 0, "Only count answers newer than this (e.g. 168h)")
	statsCmd.Flags().Int("width", 60, "Bar width")
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
