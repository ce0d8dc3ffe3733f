package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresTUI   bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores and recent online matches",
	Long: `Display the top solo runs, recent online matches and totals.

Examples:
  blockfall scores
  blockfall scores --limit 25
  blockfall scores --tui
  blockfall scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs and matches to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse the scoreboard interactively")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all saved solo runs")
}

func runScores(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearScores(); err != nil {
			return err
		}
		fmt.Println("Solo runs cleared.")
		return nil
	}

	if flagScoresTUI {
		a := &app{cfg: cfg}
		rc := a.runtimeConfig()
		_, err := tui.RunScoreboard(store, rc.ScreenW, rc.ScreenH)
		return err
	}

	scores, err := store.TopScores(flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Println("High Scores")
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'blockfall play' to set the first high score!")
	} else {
		fmt.Printf("  %-4s  %-12s  %-8s  %-5s  %-5s  %s\n", "Rank", "Player", "Score", "Lines", "Level", "Date")
		fmt.Printf("  %-4s  %-12s  %-8s  %-5s  %-5s  %s\n", "----", "------", "-----", "-----", "-----", "----")
		for i, e := range scores {
			fmt.Printf("  %-4d  %-12s  %-8d  %-5d  %-5d  %s\n",
				i+1, e.Player, e.Score, e.Lines, e.Level, e.CreatedAt.Format("2006-01-02 15:04"))
		}
	}

	matches, err := store.RecentOnlineMatches(flagScoresLimit)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		fmt.Println()
		fmt.Println("Recent Matches")
		fmt.Println()
		fmt.Printf("  %-16s  %-22s  %-12s  %-6s  %s\n", "Date", "Peer", "Result", "Time", "Sent/Recv")
		fmt.Printf("  %-16s  %-22s  %-12s  %-6s  %s\n", "----", "----", "------", "----", "---------")
		for _, r := range matches {
			fmt.Printf("  %-16s  %-22s  %-12s  %-6s  %d/%d\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Peer, r.Result,
				fmt.Sprintf("%d:%02d", r.Duration/60, r.Duration%60), r.LinesSent, r.LinesReceived)
		}
	}

	stats, err := store.GetStats()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Best: %d  Games: %d  Lines: %d  Online: %dW/%dL\n",
		stats.HighScore, stats.GamesCount, stats.TotalLines, stats.Wins, stats.Losses)
	return nil
}
