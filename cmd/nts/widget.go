package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nts-go/internal/app"
	"nts-go/internal/widget"
)

func withCompanion(cmd *cobra.Command, operation string, fn func(c *app.Companion, feed widget.Feed, width int) error) error {
	feedName, _ := cmd.Flags().GetString("feed")
	width, _ := cmd.Flags().GetInt("width")
	feed, err := widget.FeedByName(feedName)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := app.NewCompanion(cfg, operation)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c, feed, width)
}

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Companion view of the current note or reminder",
}

var widgetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current card",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCompanion(cmd, "WidgetShow", func(c *app.Companion, feed widget.Feed, width int) error {
			card, err := c.Show(feed)
			if err != nil {
				return err
			}
			fmt.Println(widget.Render(card, width))
			return nil
		})
	},
}

var widgetNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Advance to the next card",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCompanion(cmd, "WidgetNext", func(c *app.Companion, feed widget.Feed, width int) error {
			card, err := c.Next(feed)
			if err != nil {
				return err
			}
			fmt.Println(widget.Render(card, width))
			return nil
		})
	},
}

var widgetWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Redraw the card whenever the app changes it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCompanion(cmd, "WidgetWatch", func(c *app.Companion, feed widget.Feed, width int) error {
			return c.Watch(cmd.Context(), feed, func(card widget.Card) {
				// Clear the screen and home the cursor before redrawing
				fmt.Print("\033[H\033[2J")
				fmt.Println(widget.Render(card, width))
			})
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{widgetShowCmd, widgetNextCmd, widgetWatchCmd} {
		c.Flags().String("feed", widget.NotesFeed.Name, "notes or reminders")
		c.Flags().Int("width", 48, "Card width in columns")
		widgetCmd.AddCommand(c)
	}
	rootCmd.AddCommand(widgetCmd)
}
