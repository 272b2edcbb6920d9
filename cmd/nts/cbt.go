package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"nts-go/internal/app"
	"nts-go/internal/model"
)

// parseDistortions accepts list numbers (1-10) or distortion ids.
func parseDistortions(args []string) ([]string, error) {
	all := model.AllDistortions()
	var ids []string
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			if n < 1 || n > len(all) {
				return nil, fmt.Errorf("distortion number %d out of range 1-%d", n, len(all))
			}
			ids = append(ids, all[n-1].ID)
			continue
		}
		d, ok := model.LookupDistortion(arg)
		if !ok {
			return nil, fmt.Errorf("unknown distortion %q", arg)
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// cbtForm asks for every field of an entry interactively.
func cbtForm(e *model.CBTEntry) error {
	options := make([]huh.Option[string], 0, len(model.AllDistortions()))
	for _, d := range model.AllDistortions() {
		options = append(options, huh.NewOption(d.Emoji+" "+d.Title, d.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Situation").Value(&e.Situation),
			huh.NewMultiSelect[string]().Title("Distortions").Options(options...).Value(&e.DistortionIDs),
		),
		huh.NewGroup(
			huh.NewText().Title("Challenge").Value(&e.Challenge),
			huh.NewText().Title("Alternative thought").Value(&e.Alternative),
			huh.NewText().Title("Notes").Value(&e.Notes),
		),
	).Run()
}

var cbtCmd = &cobra.Command{
	Use:   "cbt",
	Short: "Manage thought records",
}

var cbtAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a thought record (interactive without --situation)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var entry model.CBTEntry
		situation, _ := cmd.Flags().GetString("situation")
		if situation == "" {
			if err := cbtForm(&entry); err != nil {
				return err
			}
		} else {
			distortions, _ := cmd.Flags().GetStringSlice("distortion")
			ids, err := parseDistortions(distortions)
			if err != nil {
				return err
			}
			entry.Situation = situation
			entry.DistortionIDs = ids
			entry.Challenge, _ = cmd.Flags().GetString("challenge")
			entry.Alternative, _ = cmd.Flags().GetString("alternative")
			entry.Notes, _ = cmd.Flags().GetString("notes")
		}

		return withApp(cmd.Context(), "AddCBTEntry", func(a *app.NtsApp) error {
			rec, err := a.CBTEntries().Add(cmd.Context(), entry)
			if err != nil {
				return err
			}
			fmt.Printf("Added thought record %s\n", shortID(rec.ID))
			return nil
		})
	},
}

var cbtListCmd = &cobra.Command{
	Use:   "list",
	Short: "List thought records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		return withApp(cmd.Context(), "ListCBTEntry", func(a *app.NtsApp) error {
			entries := a.CBTEntries().Items()
			if len(entries) == 0 {
				fmt.Println("No thought records.")
				return nil
			}
			for i, e := range entries {
				var emoji []string
				for _, d := range model.Distortions(e) {
					emoji = append(emoji, d.Emoji)
				}
				printRow(i, e.ID, e.Date, strings.TrimSpace(strings.Join(emoji, "")+" "+e.Situation))
				if verbose {
					printField("challenge", e.Challenge)
					printField("alternative", e.Alternative)
					printField("notes", e.Notes)
				}
			}
			return nil
		})
	},
}

func printField(name, value string) {
	if value != "" {
		fmt.Printf("     %s: %s\n", name, value)
	}
}

var cbtEditCmd = &cobra.Command{
	Use:   "edit INDEX",
	Short: "Edit a thought record interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), "EditCBTEntry", func(a *app.NtsApp) error {
			entry, err := recordAt(a.CBTEntries(), args[0])
			if err != nil {
				return err
			}
			if err := cbtForm(&entry); err != nil {
				return err
			}
			_, err = a.CBTEntries().Update(cmd.Context(), entry)
			return err
		})
	},
}

var cbtRmCmd = &cobra.Command{
	Use:   "rm INDEX...",
	Short: "Remove thought records by list position",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		positions, err := parsePositions(args)
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), "DeleteCBTEntry", func(a *app.NtsApp) error {
			removed, err := a.CBTEntries().DeleteAt(cmd.Context(), positions...)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d thought records\n", len(removed))
			return nil
		})
	},
}

var distortionsCmd = &cobra.Command{
	Use:   "distortions",
	Short: "List the cognitive distortion categories",
	Run: func(cmd *cobra.Command, args []string) {
		for i, d := range model.AllDistortions() {
			fmt.Printf("%2d  %s  %s\n    %s\n", i+1, d.Emoji, d.Title, d.Description)
		}
	},
}

func init() {
	cbtAddCmd.Flags().String("situation", "", "What happened")
	cbtAddCmd.Flags().StringSlice("distortion", nil, "Distortion number (see `nts distortions`) or id; repeatable")
	cbtAddCmd.Flags().String("challenge", "", "Evidence against the thought")
	cbtAddCmd.Flags().String("alternative", "", "A more balanced thought")
	cbtAddCmd.Flags().String("notes", "", "Anything else")
	cbtListCmd.Flags().BoolP("verbose", "v", false, "Show every field")

	cbtCmd.AddCommand(cbtAddCmd, cbtListCmd, cbtEditCmd, cbtRmCmd,
		clearCommand("thought records", "CBTEntry", (*app.NtsApp).CBTEntries))
	rootCmd.AddCommand(cbtCmd, distortionsCmd)
}
