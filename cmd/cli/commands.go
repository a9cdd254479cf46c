package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	limitFlag      int
	freshFlag      bool
	includeMeta    bool
	onlyCustomFlag bool
)

func init() {
	playerMatchesCmd.Flags().IntVar(&limitFlag, "limit", 50, "Maximum number of matches to list")
	playerMatchesCmd.Flags().BoolVar(&includeMeta, "meta", false, "Include match summaries")
	playerMatchesCmd.Flags().BoolVar(&onlyCustomFlag, "only-custom", false, "Keep only custom matches in summaries")

	liveCmd.Flags().IntVar(&limitFlag, "limit", 12, "Maximum number of matches to aggregate")
	liveCmd.Flags().BoolVar(&freshFlag, "fresh", false, "Force recomputation, bypassing the cache")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playerMatchesCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(tournamentsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/health")
	},
}

var playerMatchesCmd = &cobra.Command{
	Use:   "player-matches <name>",
	Short: "List recent match ids for a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("name", args[0])
		q.Set("limit", fmt.Sprint(limitFlag))
		if includeMeta {
			q.Set("includeMeta", "true")
		}
		if onlyCustomFlag {
			q.Set("onlyCustom", "true")
		}
		return performGetRequest("/api/pubg/player-matches?" + q.Encode())
	},
}

var liveCmd = &cobra.Command{
	Use:   "live <tournament-id>",
	Short: "Fetch the live aggregate for a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(limitFlag))
		if freshFlag {
			q.Set("fresh", "true")
		}
		return performGetRequest("/api/tournaments/" + url.PathEscape(args[0]) + "/live?" + q.Encode())
	},
}

var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "List tournaments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/tournaments")
	},
}

func performGetRequest(endpoint string) error {
	target := host + endpoint

	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println(string(body))

	return nil
}
