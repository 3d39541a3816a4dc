package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowday/flowday/internal/apiclient"
	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/notify"
	"github.com/flowday/flowday/internal/session"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newClient() *apiclient.Client {
	return apiclient.New(cfg.API.URL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger),
	)
}

func openSession(client session.Authenticator) (*session.Session, error) {
	dir, err := session.DefaultDir()
	if err != nil {
		return nil, err
	}
	fs, err := session.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	s := session.New(fs, logger)
	if err := s.Init(client); err != nil {
		return nil, err
	}
	return s, nil
}

// connect returns a client carrying the persisted session. Commands that
// talk to task or chat routes need a signed-in user.
func connect() (*apiclient.Client, *session.Session, error) {
	client := newClient()
	s, err := openSession(client)
	if err != nil {
		return nil, nil, err
	}
	if !s.Authenticated() {
		return nil, nil, fmt.Errorf("%w: run flowday login", session.ErrNotAuthenticated)
	}
	return client, s, nil
}

// notifier logs every notice and rings the bell when notifications are enabled.
func notifier() notify.Notifier {
	return notify.Multi{
		notify.Log{Logger: logger},
		&notify.Bell{Out: os.Stderr, Enabled: cfg.Notifications.Enabled},
	}
}

// loadBoard builds a board over client and performs the initial load.
func loadBoard(ctx context.Context, client *apiclient.Client, s *session.Session, n notify.Notifier) (*board.Board, error) {
	b := board.New(client, board.WithLogger(logger), board.WithNotifier(n))
	b.Load(ctx)
	if err := b.Store().LastError(); err != nil {
		return nil, s.HandleError(fmt.Errorf("load tasks: %w", err))
	}
	return b, nil
}
