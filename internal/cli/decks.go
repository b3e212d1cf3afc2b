package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/youruser/deckbuilder/internal/deck"
	"github.com/youruser/deckbuilder/internal/util"
)

// DecksCmd returns the decks command
func DecksCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Inspect saved decks",
	}
	cmd.AddCommand(decksListCmd(configPath))
	cmd.AddCommand(decksExportCmd(configPath))
	return cmd
}

func decksListCmd(configPath *string) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's saved decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			e := a.engine()
			if err := e.LoadSaved(cmd.Context(), user); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			decks := e.SavedDecks()
			if len(decks) == 0 {
				fmt.Fprintln(w, "No saved decks.")
				return nil
			}
			for _, d := range decks {
				v := deck.CheckValidity(d)
				status := color.New(color.FgGreen).Sprint("legal")
				if !v.Legal {
					status = color.New(color.FgRed).Sprint("not legal")
				}
				st := deck.ComputeStats(d)
				fmt.Fprintf(w, "%s  %s  main %d / extra %d / side %d  %s  updated %s\n",
					color.New(color.FgCyan).Sprint(d.ID), d.Name,
					st.Main, st.Extra, st.Side, status,
					d.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owning user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func decksExportCmd(configPath *string) *cobra.Command {
	var user, id, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved deck as a text list or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			e := a.engine()
			if err := e.LoadSaved(cmd.Context(), user); err != nil {
				return err
			}
			var found *deck.Deck
			for _, d := range e.SavedDecks() {
				if d.ID == id {
					found = &d
					break
				}
			}
			if found == nil {
				return fmt.Errorf("%w: %s", deck.ErrDeckNotFound, id)
			}

			var data []byte
			switch strings.ToLower(format) {
			case "text", "txt":
				data = []byte(deck.ExportText(*found))
			case "yaml", "yml":
				if data, err = deck.MarshalYAML(*found); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want text or yaml)", format)
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := util.EnsureParentDir(out); err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owning user id")
	cmd.Flags().StringVar(&id, "id", "", "saved deck id")
	cmd.Flags().StringVar(&format, "format", "text", "text or yaml")
	cmd.Flags().StringVar(&out, "out", "", "write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
