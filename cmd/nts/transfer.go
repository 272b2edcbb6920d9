package main

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"nts-go/internal/app"
	"nts-go/internal/nts"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		toClipboard, _ := cmd.Flags().GetBool("clipboard")
		notesOnly, _ := cmd.Flags().GetBool("notes")

		kind := nts.SnapshotFull
		if notesOnly {
			kind = nts.SnapshotNotes
		}

		return withApp(cmd.Context(), "Export", func(a *app.NtsApp) error {
			data, err := a.Export(kind)
			if err != nil {
				return err
			}
			switch {
			case toClipboard:
				if err := clipboard.WriteAll(string(data)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(os.Stderr, "Export copied to clipboard")
			case out != "" && out != "-":
				if err := os.WriteFile(out, data, 0o600); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Exported to %s\n", out)
			default:
				_, err = os.Stdout.Write(data)
				return err
			}
			return nil
		})
	},
}

// readImport reads FILE, stdin for "-", or the clipboard.
func readImport(cmd *cobra.Command, args []string) (*nts.Snapshot, error) {
	fromClipboard, _ := cmd.Flags().GetBool("clipboard")

	var data []byte
	var err error
	switch {
	case fromClipboard:
		var s string
		s, err = clipboard.ReadAll()
		data = []byte(s)
	case len(args) == 0 || args[0] == "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	return nts.ParseSnapshot(data)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import exported data",
}

var importNotesCmd = &cobra.Command{
	Use:   "notes [FILE|-]",
	Short: "Merge notes from an export",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := readImport(cmd, args)
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), "ImportNotes", func(a *app.NtsApp) error {
			res, err := a.ImportNotes(cmd.Context(), snap)
			if err != nil {
				return err
			}
			fmt.Printf("Notes: %d added, %d updated, %d unchanged\n", res.Added, res.Updated, res.Unchanged)
			return nil
		})
	},
}

var importAllCmd = &cobra.Command{
	Use:   "all [FILE|-]",
	Short: "Import every collection from a full export",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		modeName, _ := cmd.Flags().GetString("mode")
		mode, err := app.ParseImportMode(modeName)
		if err != nil {
			return err
		}

		// Nothing is touched until the snapshot has parsed and been confirmed.
		snap, err := readImport(cmd, args)
		if err != nil {
			return err
		}
		if snap.Kind != nts.SnapshotFull {
			return fmt.Errorf("%w: not a full export (use `nts import notes`)", nts.ErrInvalidSnapshot)
		}

		return withApp(cmd.Context(), "ImportAll", func(a *app.NtsApp) error {
			title := "Overwrite all existing data?"
			if mode == app.ImportMerge {
				title = "Merge into existing data?"
			}
			desc := fmt.Sprintf("%d notes, %d reminders, %d people, %d thought records, %d to-dos\nExported on %s",
				len(snap.Notes), len(snap.Reminders), len(snap.People), len(snap.CBTEntries), len(snap.Todos),
				snap.ExportDate.Local().Format("2006-01-02 15:04"))
			ok, err := confirm(title, desc, yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Import cancelled.")
				return nil
			}

			summary, err := a.ImportAll(cmd.Context(), snap, mode)
			if err != nil {
				return err
			}
			for _, r := range summary.Results {
				fmt.Printf("%-11s %d added, %d updated, %d unchanged\n", r.Name+":", r.Result.Added, r.Result.Updated, r.Result.Unchanged)
			}
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Write to FILE instead of stdout")
	exportCmd.Flags().Bool("clipboard", false, "Copy the export to the clipboard")
	exportCmd.Flags().Bool("notes", false, "Export notes only")

	importNotesCmd.Flags().Bool("clipboard", false, "Read the export from the clipboard")
	importAllCmd.Flags().Bool("clipboard", false, "Read the export from the clipboard")
	importAllCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	importAllCmd.Flags().String("mode", string(app.ImportOverwrite), "overwrite or merge")

	importCmd.AddCommand(importNotesCmd, importAllCmd)
	rootCmd.AddCommand(exportCmd, importCmd)
}
