package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nts-go/internal/app"
	"nts-go/internal/model"
	"nts-go/internal/nts"
)

// textKind describes a record type whose content is a single text field.
type textKind[T nts.Record[T]] struct {
	use      string // command name
	plural   string
	op       string // operation name suffix, e.g. "Note"
	store    func(a *app.NtsApp) *nts.Store[T]
	newRec   func(text string) T
	text     func(rec T) string
	withText func(rec T, text string) T
}

var (
	noteKind = textKind[model.Note]{
		use: "note", plural: "notes", op: "Note",
		store:    (*app.NtsApp).Notes,
		newRec:   model.NewNote,
		text:     func(n model.Note) string { return n.Text },
		withText: func(n model.Note, s string) model.Note { n.Text = s; return n },
	}
	reminderKind = textKind[model.Reminder]{
		use: "reminder", plural: "reminders", op: "Reminder",
		store:    (*app.NtsApp).Reminders,
		newRec:   model.NewReminder,
		text:     func(r model.Reminder) string { return r.Text },
		withText: func(r model.Reminder, s string) model.Reminder { r.Text = s; return r },
	}
	personKind = textKind[model.Person]{
		use: "person", plural: "people", op: "Person",
		store:    (*app.NtsApp).People,
		newRec:   model.NewPerson,
		text:     func(p model.Person) string { return p.Text },
		withText: func(p model.Person, s string) model.Person { p.Text = s; return p },
	}
	todoKind = textKind[model.TodoItem]{
		use: "todo", plural: "to-dos", op: "Todo",
		store:  (*app.NtsApp).Todos,
		newRec: model.NewTodoItem,
		text: func(t model.TodoItem) string {
			if t.IsCompleted {
				return "[x] " + t.Text
			}
			return "[ ] " + t.Text
		},
		withText: func(t model.TodoItem, s string) model.TodoItem { t.Text = s; return t },
	}
)

// textCommands builds add, list, edit, rm and clear for one record type.
func textCommands[T nts.Record[T]](k textKind[T]) *cobra.Command {
	parent := &cobra.Command{
		Use:   k.use,
		Short: "Manage " + k.plural,
	}

	add := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a " + k.use,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), "Add"+k.op, func(a *app.NtsApp) error {
				rec, err := k.store(a).Add(cmd.Context(), k.newRec(strings.Join(args, " ")))
				if err != nil {
					return err
				}
				fmt.Printf("Added %s %s\n", k.use, shortID(rec.RecordID()))
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List " + k.plural + ", newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), "List"+k.op, func(a *app.NtsApp) error {
				items := k.store(a).Items()
				if len(items) == 0 {
					fmt.Printf("No %s.\n", k.plural)
					return nil
				}
				for i, rec := range items {
					printRow(i, rec.RecordID(), rec.Created(), k.text(rec))
				}
				return nil
			})
		},
	}

	edit := &cobra.Command{
		Use:   "edit INDEX TEXT...",
		Short: "Replace the text of a " + k.use,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), "Edit"+k.op, func(a *app.NtsApp) error {
				rec, err := recordAt(k.store(a), args[0])
				if err != nil {
					return err
				}
				_, err = k.store(a).Update(cmd.Context(), k.withText(rec, strings.Join(args[1:], " ")))
				return err
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm INDEX...",
		Short: "Remove " + k.plural + " by list position",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := parsePositions(args)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), "Delete"+k.op, func(a *app.NtsApp) error {
				removed, err := k.store(a).DeleteAt(cmd.Context(), positions...)
				if err != nil {
					return err
				}
				fmt.Printf("Removed %d %s\n", len(removed), k.plural)
				return nil
			})
		},
	}

	parent.AddCommand(add, list, edit, rm, clearCommand(k.plural, k.op, k.store))
	return parent
}

// clearCommand deletes a whole collection after confirmation.
func clearCommand[T nts.Record[T]](plural, op string, store func(a *app.NtsApp) *nts.Store[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all " + plural + " here and in the remote store",
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return withApp(cmd.Context(), "DeleteAll"+op, func(a *app.NtsApp) error {
				s := store(a)
				ok, err := confirm(fmt.Sprintf("Delete all %d %s?", s.Len(), plural), "This cannot be undone.", yes)
				if err != nil || !ok {
					return err
				}
				return s.DeleteAll(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func recordAt[T nts.Record[T]](s *nts.Store[T], arg string) (T, error) {
	var zero T
	i, err := strconv.Atoi(arg)
	if err != nil {
		return zero, fmt.Errorf("invalid index %q", arg)
	}
	items := s.Items()
	if i < 0 || i >= len(items) {
		return zero, fmt.Errorf("index %d out of range (have %d)", i, len(items))
	}
	return items[i], nil
}

func parsePositions(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, arg := range args {
		i, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", arg)
		}
		out = append(out, i)
	}
	return out, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printRow(i int, id string, date time.Time, text string) {
	first, _, _ := strings.Cut(text, "\n")
	fmt.Printf("%3d  %s  %s  %s\n", i, shortID(id), date.Local().Format("2006-01-02 15:04"), first)
}

// todo done
var todoDoneCmd = &cobra.Command{
	Use:   "done INDEX",
	Short: "Toggle completion of a to-do",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), "ToggleTodo", func(a *app.NtsApp) error {
			item, err := recordAt(a.Todos(), args[0])
			if err != nil {
				return err
			}
			item.IsCompleted = !item.IsCompleted
			_, err = a.Todos().Update(cmd.Context(), item)
			return err
		})
	},
}

// reminder next / note next move the shared cursor the widget shows.
func advanceCommand[T nts.Record[T]](k textKind[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Advance the widget cursor to the next " + k.use,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), "Advance"+k.op, func(a *app.NtsApp) error {
				s := k.store(a)
				i, err := s.Advance()
				if err != nil {
					return err
				}
				if rec, ok := itemAt(s, i); ok {
					printRow(i, rec.RecordID(), rec.Created(), k.text(rec))
				}
				return nil
			})
		},
	}
}

func itemAt[T nts.Record[T]](s *nts.Store[T], i int) (T, bool) {
	items := s.Items()
	if i < 0 || i >= len(items) {
		var zero T
		return zero, false
	}
	return items[i], true
}

func init() {
	noteCmd := textCommands(noteKind)
	noteCmd.AddCommand(advanceCommand(noteKind))
	reminderCmd := textCommands(reminderKind)
	reminderCmd.AddCommand(advanceCommand(reminderKind))
	todoCmd := textCommands(todoKind)
	todoCmd.AddCommand(todoDoneCmd)

	rootCmd.AddCommand(noteCmd, reminderCmd, textCommands(personKind), todoCmd)
}
