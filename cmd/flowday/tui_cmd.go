package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/config"
	"github.com/flowday/flowday/internal/notify"
	"github.com/flowday/flowday/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive board",
	RunE:  runTUI,
}

var startStub bool

func init() {
	tuiCmd.Flags().BoolVar(&startStub, "start-stub", false, "Start the local stub backend when the API is unreachable")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client := newClient()

	// 1. Check the backend, optionally starting the local stub
	if err := client.Health(ctx); err != nil {
		if !startStub {
			return fmt.Errorf("backend %s unreachable: %w", cfg.API.URL, err)
		}
		fmt.Println("Flowday backend not running. Starting the local stub...")
		if err := startStubProcess(ctx); err != nil {
			return fmt.Errorf("failed to start stub: %w", err)
		}
	}

	// 2. Log to a file so output does not tear the screen
	if f, err := openTUILog(); err == nil {
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}

	s, err := openSession(client)
	if err != nil {
		return err
	}

	queue := notify.NewQueue(16)
	b := board.New(client,
		board.WithLogger(logger),
		board.WithNotifier(notify.Multi{queue, notify.Log{Logger: logger}}),
	)

	// 3. Launch TUI
	app := tui.New(tui.Options{
		Board:   b,
		Session: s,
		Auth:    client,
		Queue:   queue,
		Logger:  logger,
	})
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func openTUILog() (*os.File, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

// startStubProcess runs "flowday stub" detached and waits for it to answer.
func startStubProcess(ctx context.Context) error {
	u, err := url.Parse(cfg.API.URL)
	if err != nil {
		return err
	}
	if host := u.Hostname(); host != "localhost" && host != "127.0.0.1" {
		return fmt.Errorf("refusing to start a stub for remote host %s", host)
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}
	c := exec.Command(exe, "stub", "--listen", u.Host, "--config", configPath)
	// Detach process so it survives TUI exit
	configureDetachedProc(c)
	c.Stdin = nil
	c.Stdout = nil
	c.Stderr = nil
	if err := c.Start(); err != nil {
		return err
	}

	fmt.Print("   Waiting for stub...")
	client := newClient()
	for i := 0; i < 20; i++ { // Wait up to 5 seconds
		if err := client.Health(ctx); err == nil {
			fmt.Println(" Done.")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" Timeout!")
	return fmt.Errorf("stub started but API not reachable at %s", cfg.API.URL)
}
