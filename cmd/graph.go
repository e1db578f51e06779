package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiq/internal/relgraph"
	"github.com/abhisek/lexiq/internal/ui/theme"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the word relationship graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		word, _ := cmd.Flags().GetString("word")
		clusters, _ := cmd.Flags().GetBool("clusters")
		rebuild, _ := cmd.Flags().GetBool("rebuild")

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
		out := cmd.OutOrStdout()
		gc := relgraph.NewGraphContext(c, a.relationCache(ctx), a.log)

		if clusters {
			cs := gc.Clusters()
			if len(cs) == 0 {
				fmt.Fprintln(out, "No clusters.")
				return nil
			}
			for _, cl := range cs {
				fmt.Fprintf(out, "%s  %s  center=%s  cohesion=%d\n",
					theme.Title.Render(cl.Name), theme.Hint.Render(cl.ID), cl.CenterWord, cl.Cohesion)
				fmt.Fprintf(out, "  %s\n", strings.Join(cl.Words, ", "))
			}
			return nil
		}

		if rebuild {
			if err := a.store.RelationRepo().DeleteRelations(ctx, gc.Key()); err != nil {
				return err
			}
			if a.cache != nil {
				if err := a.cache.DeleteRelations(ctx, gc.Key()); err != nil {
					return err
				}
			}
		}

		g, err := gc.Load(ctx)
		if err != nil {
			return err
		}

		if word == "" {
			fmt.Fprintf(out, "%s  %d words, %d relations, key %s\n",
				theme.Title.Render(c.Name), len(c.Items), g.Len(), gc.Key())
			return nil
		}

		if _, ok := c.Lookup(word); !ok {
			return fmt.Errorf("%q is not in catalog %s", word, c.Name)
		}
		rels := g.Related(word)
		if len(rels) == 0 {
			fmt.Fprintf(out, "%s has no related words.\n", word)
			return nil
		}
		fmt.Fprintln(out, theme.Header.Render(fmt.Sprintf("%-24s  %-10s  %s", "Related", "Type", "Strength")))
		for _, r := range rels {
			fmt.Fprintf(out, "%-24s  %-10s  %d\n", r.To, r.Type, r.Strength)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().String("catalog", "", "Catalog file (.json or .xlsx)")
	graphCmd.Flags().String("word", "", "Show the relations of one word")
	graphCmd.Flags().Bool("clusters", false, "List category clusters")
	graphCmd.Flags().Bool("rebuild", false, "Drop cached relations before loading")
}
