package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"nts-go/internal/cloud"
	"nts-go/internal/config"
	"nts-go/internal/encryption"
	"nts-go/internal/local"
	"nts-go/internal/model"
	"nts-go/internal/nts"
	"nts-go/internal/widget"
)

// Keys of the collections the app owns. Notes and reminders are shared
// with the widget.
var (
	NoteKeys     = nts.Keys{Collection: "notes", Index: "currentIndex", Shared: true}
	ReminderKeys = nts.Keys{Collection: "reminders", Index: "currentReminderIndex", Shared: true}
	PersonKeys   = nts.Keys{Collection: "people"}
	CBTKeys      = nts.Keys{Collection: "cbtEntries"}
	TodoKeys     = nts.Keys{Collection: "todos"}
)

// NtsApp is the application layer between the CLI and the stores.
// It constructs all dependencies from config and owns their lifecycle.
type NtsApp struct {
	cfg      *config.Config
	op       *Operation
	logger   nts.Logger
	clock    nts.Clock
	local    nts.LocalStore
	notifier nts.Notifier
	remote   cloud.Database
	runner   *nts.AsyncRunner

	notes     *nts.Store[model.Note]
	reminders *nts.Store[model.Reminder]
	people    *nts.Store[model.Person]
	cbt       *nts.Store[model.CBTEntry]
	todos     *nts.Store[model.TodoItem]

	closeLocal func() error
	logCloser  io.Closer
}

// NewNtsApp creates a fully wired NtsApp from the given config.
// operation identifies the CLI command being run (e.g. "AddNote", "ImportAll").
// passphrase is only consulted when remote payloads are sealed. Stores are
// not loaded until Load is called. The caller must call Close when done.
func NewNtsApp(ctx context.Context, cfg *config.Config, operation string, passphrase PassphraseFunc) (*NtsApp, error) {
	clock := nts.RealClock{}
	op := NewOperation(operation, "", clock.Now())

	logger, logCloser, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a := &NtsApp{
		cfg:       cfg,
		op:        op,
		logger:    &slogAdapter{l: logger},
		clock:     clock,
		runner:    nts.NewAsyncRunner(),
		logCloser: logCloser,
	}

	if err := a.wire(ctx, passphrase); err != nil {
		a.closeResources()
		return nil, err
	}
	a.logger.Debug("operation started", "operation", op.Name)
	return a, nil
}

func (a *NtsApp) wire(ctx context.Context, passphrase PassphraseFunc) error {
	store, closeLocal, err := local.NewLocalStoreFromConfig(a.cfg.Local, a.clock)
	if err != nil {
		return fmt.Errorf("creating local store: %w", err)
	}
	a.local = store
	a.closeLocal = closeLocal

	notifier, err := widget.NewFileNotifier(local.SignalDir(a.cfg.Local, a.cfg.BaseDir), a.clock)
	if err != nil {
		return fmt.Errorf("creating reload notifier: %w", err)
	}
	a.notifier = notifier

	payload, err := newPayload(a.cfg.Encryption, passphrase)
	if err != nil {
		return err
	}
	db, err := cloud.NewDatabaseFromConfig(ctx, a.cfg.Remote, payload)
	if err != nil {
		return fmt.Errorf("creating remote database: %w", err)
	}
	a.remote = db

	a.notes = newStore[model.Note](a, NoteKeys, model.NoteCodec{})
	a.reminders = newStore[model.Reminder](a, ReminderKeys, model.ReminderCodec{})
	a.people = newStore[model.Person](a, PersonKeys, model.PersonCodec{})
	a.cbt = newStore[model.CBTEntry](a, CBTKeys, model.CBTEntryCodec{})
	a.todos = newStore[model.TodoItem](a, TodoKeys, model.TodoItemCodec{})
	return nil
}

// newPayload unlocks the age identity when encryption is configured.
func newPayload(cfg config.EncryptionConfig, passphrase PassphraseFunc) (*cloud.Payload, error) {
	keyring, err := encryption.NewKeyringFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating keyring: %w", err)
	}
	if keyring == nil {
		return cloud.NewPayload(nil, nil), nil
	}
	if !keyring.Exists() {
		return nil, fmt.Errorf("encryption keys not found: run `nts config init --encrypt`")
	}
	if passphrase == nil {
		return nil, ErrNoPassphrase
	}
	pass, err := passphrase()
	if err != nil {
		return nil, err
	}
	opener, err := keyring.Unlock(pass)
	if err != nil {
		return nil, err
	}
	return cloud.NewPayload(keyring, opener), nil
}

func newStore[T nts.Record[T]](a *NtsApp, keys nts.Keys, codec cloud.Codec[T]) *nts.Store[T] {
	var remote nts.RemoteStore[T]
	if a.remote != nil {
		remote = cloud.NewAdapter[T](a.remote, codec, a.logger)
	}
	return nts.NewStore[T](keys, a.local, remote, a.notifier, a.runner, a.logger, a.clock, nts.UUIDGenerator{})
}

// Load loads every collection concurrently.
func (a *NtsApp) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.notes.Load(gctx) })
	g.Go(func() error { return a.reminders.Load(gctx) })
	g.Go(func() error { return a.people.Load(gctx) })
	g.Go(func() error { return a.cbt.Load(gctx) })
	g.Go(func() error { return a.todos.Load(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading collections: %w", err)
	}
	return nil
}

func (a *NtsApp) Notes() *nts.Store[model.Note] { return a.notes }
func (a *NtsApp) Reminders() *nts.Store[model.Reminder] { return a.reminders }
func (a *NtsApp) People() *nts.Store[model.Person] { return a.people }
func (a *NtsApp) CBTEntries() *nts.Store[model.CBTEntry] { return a.cbt }
func (a *NtsApp) Todos() *nts.Store[model.TodoItem] { return a.todos }

// Operation returns the operation this app was created for.
func (a *NtsApp) Operation() *Operation { return a.op }

// Fail records a command failure so Close logs it.
func (a *NtsApp) Fail(err error) {
	a.op.Fail(err)
	if err != nil {
		a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
	}
}

// Close waits for scheduled remote writes, then releases the local store
// and the log file.
func (a *NtsApp) Close() error {
	a.runner.Wait()
	a.logger.Info("operation finished", "operation", a.op.Name, "status", a.op.Status,
		"elapsed", a.clock.Now().Sub(a.op.StartedAt).String())
	return a.closeResources()
}

func (a *NtsApp) closeResources() error {
	var errs []error
	if a.closeLocal != nil {
		if err := a.closeLocal(); err != nil {
			errs = append(errs, fmt.Errorf("closing local store: %w", err))
		}
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// CollectionStatus describes one store after loading.
type CollectionStatus struct {
	Name   string
	Count  int
	Source nts.Source
	State  nts.State
}

// SyncStatus reports the remote configuration and every collection's state.
type SyncStatus struct {
	RemoteType      string
	RemoteAvailable bool
	Collections     []CollectionStatus
}

// Status probes the remote and summarizes each loaded collection.
func (a *NtsApp) Status(ctx context.Context) SyncStatus {
	s := SyncStatus{RemoteType: a.cfg.Remote.Type}
	if s.RemoteType == "" {
		s.RemoteType = "none"
	}
	if a.remote != nil {
		s.RemoteAvailable = a.remote.AccountStatus(ctx) == nil
	}
	s.Collections = []CollectionStatus{
		collectionStatus(NoteKeys.Collection, a.notes),
		collectionStatus(ReminderKeys.Collection, a.reminders),
		collectionStatus(PersonKeys.Collection, a.people),
		collectionStatus(CBTKeys.Collection, a.cbt),
		collectionStatus(TodoKeys.Collection, a.todos),
	}
	return s
}

func collectionStatus[T nts.Record[T]](name string, s *nts.Store[T]) CollectionStatus {
	return CollectionStatus{Name: name, Count: s.Len(), Source: s.Source(), State: s.State()}
}

// SetupEncryption generates the age key pair named by cfg and returns its
// recipient.
func SetupEncryption(cfg config.EncryptionConfig, passphrase string) (string, error) {
	recipient, err := encryption.NewAgeKeyring(cfg).Generate(passphrase)
	if err != nil {
		return "", fmt.Errorf("generating keys at %s: %w", cfg.PublicKeyPath, err)
	}
	return recipient, nil
}
