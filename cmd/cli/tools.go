package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewToolsCommand creates the tools listing command.
func NewToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Fetch workflows and print the tools they become",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return err
			}

			container := NewContainer(config)

			count, err := container.Registry.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("tool refresh failed: %w", err)
			}

			fmt.Printf("%d tools registered\n\n", count)

			for _, tool := range container.Registry.List() {
				fmt.Printf("%s\n", tool.Name)
				fmt.Printf("  %s\n", tool.Description)
				fmt.Printf("  %s %s\n", tool.Method, tool.ResolvedURL)

				if len(tool.Parameters) == 0 {
					fmt.Println()
					continue
				}

				for _, param := range tool.Parameters {
					attrs := []string{param.Type}
					if param.Required {
						attrs = append(attrs, "required")
					}
					if param.Default != nil {
						attrs = append(attrs, fmt.Sprintf("default=%v", param.Default))
					}

					fmt.Printf("  - %s (%s)\n", param.Name, strings.Join(attrs, ", "))
				}

				fmt.Println()
			}

			return nil
		},
	}
}
