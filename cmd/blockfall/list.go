package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Long:  `Shows the games registered in blockfall.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	fmt.Println("Available games:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Description")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----------")
	for _, g := range games {
		desc := g.Description
		if desc == "" {
			desc = g.Title
		}
		fmt.Printf("  %-*s  %s\n", maxIDLen, g.ID, desc)
	}

	fmt.Println()
	fmt.Println("Run 'blockfall play <id>' to play a game.")
}
