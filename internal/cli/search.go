package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/youruser/deckbuilder/internal/cards"
)

// SearchCmd returns the search command
func SearchCmd(configPath *string) *cobra.Command {
	var (
		filters cards.SearchFilters
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the card catalog",
		Long: `Search the card catalog configured for the server.

Examples:
  deckbuilder search --name "dark magician"
  deckbuilder search --type "Fusion Monster" --attribute LIGHT --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			found, err := a.catalog.Search(cmd.Context(), filters, limit)
			if err != nil {
				return err
			}
			printCards(cmd.OutOrStdout(), found)
			return nil
		},
	}
	cmd.Flags().StringVar(&filters.Name, "name", "", "part of the card name")
	cmd.Flags().StringVar(&filters.Type, "type", "", "card type")
	cmd.Flags().StringVar(&filters.Race, "race", "", "monster race or spell/trap kind")
	cmd.Flags().StringVar(&filters.Archetype, "archetype", "", "archetype")
	cmd.Flags().StringVar(&filters.Attribute, "attribute", "", "monster attribute")
	cmd.Flags().IntVar(&limit, "limit", cards.DefaultLimit, "maximum results")
	return cmd
}

func printCards(w io.Writer, found []cards.Card) {
	if len(found) == 0 {
		fmt.Fprintln(w, "No cards found.")
		return
	}
	for _, c := range found {
		idColor(c).Fprintf(w, "%-9d", c.ID)
		fmt.Fprintf(w, " %s ", c.Name)
		color.New(color.FgHiBlack).Fprintf(w, "[%s]", c.Type)
		if c.Atk != nil && c.Def != nil {
			fmt.Fprintf(w, " ATK %d / DEF %d", *c.Atk, *c.Def)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d card(s)\n", len(found))
}

// idColor follows the card frame colours.
func idColor(c cards.Card) *color.Color {
	switch c.Type {
	case "Fusion Monster":
		return color.New(color.FgMagenta)
	case "Synchro Monster":
		return color.New(color.FgWhite, color.Bold)
	case "XYZ Monster":
		return color.New(color.FgHiBlack, color.Bold)
	case "Link Monster":
		return color.New(color.FgBlue)
	case "Spell Card":
		return color.New(color.FgGreen)
	case "Trap Card":
		return color.New(color.FgRed)
	case "Normal Monster":
		return color.New(color.FgYellow)
	}
	return color.New(color.FgHiYellow)
}
