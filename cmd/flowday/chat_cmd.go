package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowday/flowday/internal/chat"
	"github.com/flowday/flowday/internal/notify"
	"github.com/flowday/flowday/internal/poller"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the planning assistant",
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChatAsk,
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the chat history",
	RunE:  runChatClear,
}

var chatWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the chat history and notify on new replies",
	RunE:  runChatWatch,
}

func init() {
	chatCmd.AddCommand(chatAskCmd, chatClearCmd, chatWatchCmd)
}

func runChatAsk(cmd *cobra.Command, args []string) error {
	client, s, err := connect()
	if err != nil {
		return err
	}
	msg, err := client.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return s.HandleError(err)
	}
	if msg.Response == nil {
		fmt.Println("(no reply yet, run flowday chat watch)")
		return nil
	}
	fmt.Println(*msg.Response)
	return nil
}

func runChatClear(cmd *cobra.Command, args []string) error {
	client, s, err := connect()
	if err != nil {
		return err
	}
	if err := client.ClearMessages(cmd.Context()); err != nil {
		return s.HandleError(err)
	}
	fmt.Println("Chat history cleared")
	return nil
}

// bubblePrinter prints bubbles it has not printed before.
type bubblePrinter struct {
	seen map[string]bool
}

func (p *bubblePrinter) print(bubbles []chat.Bubble) {
	for _, b := range bubbles {
		if p.seen[b.ID] || b.Pending {
			continue
		}
		p.seen[b.ID] = true
		who := "you"
		if b.Role == chat.RoleAssistant {
			who = "assistant"
		}
		fmt.Printf("[%s] %s: %s\n", b.CreatedAt.Local().Format("15:04"), who, b.Text)
	}
}

func runChatWatch(cmd *cobra.Command, args []string) error {
	client, _, err := connect()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	bell := &notify.Bell{Out: os.Stderr, Enabled: cfg.Notifications.Enabled}
	feed := chat.NewFeed(client, notify.Multi{notify.Log{Logger: logger}, bell}, "Flowday assistant")
	printer := &bubblePrinter{seen: make(map[string]bool)}

	p := poller.New("chat", cfg.Chat.PollInterval, func(ctx context.Context) error {
		if err := feed.Refresh(ctx); err != nil {
			return err
		}
		printer.print(feed.Bubbles())
		return nil
	}, logger)
	p.Start(ctx)

	fmt.Fprintf(os.Stderr, "Watching chat every %s, Ctrl+C to stop\n", cfg.Chat.PollInterval)
	<-ctx.Done()
	p.Stop()
	return nil
}
