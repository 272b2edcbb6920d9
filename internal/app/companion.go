package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"nts-go/internal/config"
	"nts-go/internal/local"
	"nts-go/internal/nts"
	"nts-go/internal/widget"
)

// Companion is the read-only widget process. It shares the local store with
// the main app but never loads the remote or mutates a collection.
type Companion struct {
	view       *widget.View
	signalDir  string
	logger     nts.Logger
	closeLocal func() error
	logCloser  io.Closer
}

// NewCompanion opens the shared local store named by cfg.
func NewCompanion(cfg *config.Config, operation string) (*Companion, error) {
	clock := nts.RealClock{}
	op := NewOperation(operation, "", clock.Now())
	logger, logCloser, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	l := &slogAdapter{l: logger}

	store, closeLocal, err := local.NewLocalStoreFromConfig(cfg.Local, clock)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("creating local store: %w", err)
	}
	dir := local.SignalDir(cfg.Local, cfg.BaseDir)
	notifier, err := widget.NewFileNotifier(dir, clock)
	if err != nil {
		closeLocal()
		logCloser.Close()
		return nil, fmt.Errorf("creating reload notifier: %w", err)
	}

	return &Companion{
		view:       widget.NewView(store, notifier, l),
		signalDir:  dir,
		logger:     l,
		closeLocal: closeLocal,
		logCloser:  logCloser,
	}, nil
}

// Show returns the card under the feed's cursor.
func (c *Companion) Show(feed widget.Feed) (widget.Card, error) {
	return c.view.Current(feed)
}

// Next advances the feed's cursor.
func (c *Companion) Next(feed widget.Feed) (widget.Card, error) {
	return c.view.Next(feed)
}

// Watch calls render with the current card, then again after every reload
// broadcast, until ctx is done.
func (c *Companion) Watch(ctx context.Context, feed widget.Feed, render func(widget.Card)) error {
	w, err := widget.NewWatcher(c.signalDir, c.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	card, err := c.view.Current(feed)
	if err != nil {
		return err
	}
	render(card)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	g.Go(func() error {
		for range w.Reloads() {
			card, err := c.view.Current(feed)
			if err != nil {
				return err
			}
			render(card)
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Companion) Close() error {
	var errs []error
	if err := c.closeLocal(); err != nil {
		errs = append(errs, fmt.Errorf("closing local store: %w", err))
	}
	if err := c.logCloser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing log: %w", err))
	}
	return errors.Join(errs...)
}
