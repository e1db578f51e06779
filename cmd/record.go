package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiq/internal/ui/theme"
)

var recordCmd = &cobra.Command{
	Use:   "record <word>",
	Short: "Record one answer for a word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		correct, _ := cmd.Flags().GetBool("correct")
		wrong, _ := cmd.Flags().GetBool("wrong")
		dontKnow, _ := cmd.Flags().GetBool("dont-know")

		switch n := countTrue(correct, wrong, dontKnow); {
		case n == 0:
			return fmt.Errorf("use one of --correct, --wrong or --dont-know")
		case n > 1:
			return fmt.Errorf("--correct, --wrong and --dont-know are exclusive")
		}

		word := args[0]
		if path, _ := cmd.Flags().GetString("catalog"); path != "" {
			c, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			if _, ok := c.Lookup(word); !ok {
				return fmt.Errorf("%q is not in catalog %s", word, c.Name)
			}
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

		before := svc.Get(word)
		after, tr, err := svc.RecordAnswer(ctx, word, correct, dontKnow, time.Now())
		if err != nil {
			return err
		}
		a.log.Info("answer recorded", "item", word, "correct", correct, "position", after.Position)

		out := cmd.OutOrStdout()
		verdict := theme.Incorrect.Render("wrong")
		if correct {
			verdict = theme.Correct.Render("correct")
		}
		fmt.Fprintf(out, "%s: %s  position %d -> %d  (%s)\n",
			word, verdict, before.Position, after.Position,
			theme.Band(after.Band()).Render(string(after.Band())))
		if tr != nil {
			fmt.Fprintf(out, "level %s -> %s (%s)\n", tr.From, tr.To, tr.Trigger)
		}
		return nil
	},
}

func init() {
	recordCmd.Flags().Bool("correct", false, "The answer was correct")
	recordCmd.Flags().Bool("wrong", false, "The answer was a wrong guess")
	recordCmd.Flags().Bool("dont-know", false, "The learner said they don't know")
	recordCmd.Flags().String("catalog", "", "Verify the word against this catalog")
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
