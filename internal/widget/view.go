package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"nts-go/internal/model"
	"nts-go/internal/nts"
)

// Feed is one collection the companion can display.
type Feed struct {
	Name        string
	Collection  string
	Index       string
	Placeholder string
	decode      func(local nts.LocalStore, key string) ([]Item, error)
}

var (
	NotesFeed = Feed{
		Name:        "notes",
		Collection:  "notes",
		Index:       "currentIndex",
		Placeholder: "No notes",
		decode:      decodeNotes,
	}
	RemindersFeed = Feed{
		Name:        "reminders",
		Collection:  "reminders",
		Index:       "currentReminderIndex",
		Placeholder: "No reminders",
		decode:      decodeReminders,
	}
)

// FeedByName returns the feed called name.
func FeedByName(name string) (Feed, error) {
	switch name {
	case NotesFeed.Name:
		return NotesFeed, nil
	case RemindersFeed.Name:
		return RemindersFeed, nil
	default:
		return Feed{}, fmt.Errorf("unknown feed %q", name)
	}
}

// Item is the part of a record the companion shows.
type Item struct {
	ID   string
	Text string
	Date time.Time
}

// Card is what the companion displays for a feed.
type Card struct {
	Item     Item
	Position int // zero-based; meaningless when Total is 0
	Total    int
}

// Empty reports whether the card is the placeholder.
func (c Card) Empty() bool { return c.Total == 0 }

// View reads shared collections and cursors. It never writes a collection.
type View struct {
	local    nts.LocalStore
	notifier nts.Notifier
	logger   nts.Logger
}

func NewView(local nts.LocalStore, notifier nts.Notifier, logger nts.Logger) *View {
	if notifier == nil {
		notifier = nts.NopNotifier{}
	}
	return &View{local: local, notifier: notifier, logger: logger}
}

// Current returns the card under the feed's cursor. Unreadable data shows
// the placeholder.
func (v *View) Current(feed Feed) (Card, error) {
	items := v.items(feed)
	if len(items) == 0 {
		return Card{Item: Item{Text: feed.Placeholder}}, nil
	}
	i, err := nts.ReadIndex(v.local, feed.Index)
	if err != nil {
		v.logger.Warn("cursor unreadable", "key", feed.Index, "error", err)
		i = 0
	}
	if i < 0 || i >= len(items) {
		i = 0
	}
	return Card{Item: items[i], Position: i, Total: len(items)}, nil
}

// Next advances the feed's cursor, wrapping at the end, and broadcasts a
// reload. An empty feed is left alone.
func (v *View) Next(feed Feed) (Card, error) {
	items := v.items(feed)
	if len(items) == 0 {
		return Card{Item: Item{Text: feed.Placeholder}}, nil
	}
	i, err := nts.ReadIndex(v.local, feed.Index)
	if err != nil || i < 0 {
		i = 0
	}
	i = (i + 1) % len(items)
	if err := nts.WriteIndex(v.local, feed.Index, i); err != nil {
		return Card{}, err
	}
	if err := v.notifier.ReloadAll(); err != nil {
		v.logger.Warn("reload broadcast failed", "error", err)
	}
	return Card{Item: items[i], Position: i, Total: len(items)}, nil
}

func (v *View) items(feed Feed) []Item {
	items, err := feed.decode(v.local, feed.Collection)
	if err != nil {
		v.logger.Warn("collection unreadable", "key", feed.Collection, "error", err)
		return nil
	}
	return items
}

func decodeNotes(local nts.LocalStore, key string) ([]Item, error) {
	notes, err := nts.DecodeCollection[model.Note](local, key)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(notes))
	for i, n := range notes {
		items[i] = Item{ID: n.ID, Text: n.Text, Date: n.Date}
	}
	return items, nil
}

func decodeReminders(local nts.LocalStore, key string) ([]Item, error) {
	reminders, err := nts.DecodeCollection[model.Reminder](local, key)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(reminders))
	for i, r := range reminders {
		items[i] = Item{ID: r.ID, Text: r.Text, Date: r.Date}
	}
	return items, nil
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)
	footerStyle = lipgloss.NewStyle().
			Faint(true).
			Align(lipgloss.Right)
)

// Render draws the card inside a box width columns wide.
func Render(c Card, width int) string {
	inner := width - cardStyle.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}
	body := lipgloss.NewStyle().Width(inner).Render(strings.TrimSpace(c.Item.Text))
	if !c.Empty() {
		footer := footerStyle.Width(inner).Render(fmt.Sprintf("%d/%d", c.Position+1, c.Total))
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", footer)
	}
	return cardStyle.Render(body)
}
