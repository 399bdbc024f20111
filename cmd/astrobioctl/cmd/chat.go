package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	astrobio "github.com/kailas-cloud/astrobio/pkg/sdk"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the research assistant",
	Long: `Ask a single question, or start an interactive session when no
message is given. The whole conversation is sent with every turn.

Examples:
  astrobioctl chat "What do we know about immune response in space?"
  astrobioctl chat`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		reply, err := client.Chat(ctx, []astrobio.ChatMessage{{Role: "user", Content: strings.Join(args, " ")}})
		if err != nil {
			return fmt.Errorf("chat failed: %w", err)
		}
		if handled, err := printJSON(out, reply); handled {
			return err
		}
		fmt.Fprintf(out, "%s\n%s\n", reply.Text, modeLine(reply.Usage))
		return nil
	}

	var history []astrobio.ChatMessage
	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(out, heading("you> "))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(out, heading("you> "))
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		history = append(history, astrobio.ChatMessage{Role: "user", Content: line})
		reply, err := client.Chat(ctx, history)
		if err != nil {
			return fmt.Errorf("chat failed: %w", err)
		}
		history = append(history, astrobio.ChatMessage{Role: "assistant", Content: reply.Text})

		fmt.Fprintf(out, "%s %s\n%s\n", heading("buddy>"), reply.Text, modeLine(reply.Usage))
		fmt.Fprint(out, heading("you> "))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
