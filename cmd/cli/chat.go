package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hookline/hookline/internal/domain"
)

// NewChatCommand creates the interactive chat command.
func NewChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation that can trigger workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return err
			}

			container := NewContainer(config)

			chatAgent, err := container.RequireAgent()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			count, err := container.Registry.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("initial tool refresh failed: %w", err)
			}

			log.Info().Int("tools", count).Msg("Tool registry ready")

			fmt.Println("Type a message, or /tools to list tools, /refresh to reload them, /quit to exit.")

			var history []domain.Message

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}

				switch input {
				case "/quit", "/exit":
					return nil
				case "/tools":
					for _, tool := range container.Registry.List() {
						fmt.Printf("  %s - %s\n", tool.Name, tool.Description)
					}
					continue
				case "/refresh":
					count, err := container.Registry.Refresh(ctx)
					if err != nil {
						fmt.Printf("refresh failed: %v\n", err)
						continue
					}
					fmt.Printf("registry refreshed, %d tools\n", count)
					continue
				}

				reply, updated, err := chatAgent.Chat(ctx, history, input)
				if err != nil {
					fmt.Printf("error: %v\n", err)
					continue
				}

				history = updated

				fmt.Println(reply)
			}

			return scanner.Err()
		},
	}
}
