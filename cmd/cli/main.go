package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	userID  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rukun-cli",
		Short: "Rukun CLI tool",
		Long:  `A command line interface for interacting with the Rukun API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Rukun API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID sent as X-User-ID")

	// Poll commands
	pollsCmd := &cobra.Command{
		Use:   "polls",
		Short: "Poll operations",
	}

	pollsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List polls",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/polls")
		},
	}

	pollsViewCmd := &cobra.Command{
		Use:   "view <poll-id>",
		Short: "View a poll",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/polls/" + args[0])
		},
	}

	pollsVoteCmd := &cobra.Command{
		Use:   "vote <poll-id> <option-id>",
		Short: "Cast a vote",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/polls/"+args[0]+"/votes", map[string]any{
				"option_id": args[1],
			})
		},
	}

	pollsCloseCmd := &cobra.Command{
		Use:   "close <poll-id>",
		Short: "Close a poll",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/polls/"+args[0]+"/close", nil)
		},
	}

	pollsCmd.AddCommand(pollsListCmd, pollsViewCmd, pollsVoteCmd, pollsCloseCmd)
	rootCmd.AddCommand(pollsCmd)

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expense and balance",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/ledger/summary")
		},
	}

	var (
		recordType     string
		recordAmount   string
		recordCategory string
		recordDesc     string
	)

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a ledger transaction",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/ledger/transactions", map[string]any{
				"type":        recordType,
				"amount":      recordAmount,
				"category":    recordCategory,
				"description": recordDesc,
			})
		},
	}
	recordCmd.Flags().StringVar(&recordType, "type", "income", "Transaction type (income or expense)")
	recordCmd.Flags().StringVar(&recordAmount, "amount", "0", "Amount")
	recordCmd.Flags().StringVar(&recordCategory, "category", "", "Category")
	recordCmd.Flags().StringVar(&recordDesc, "description", "", "Description")

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check poll tally consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	ledgerCmd.AddCommand(summaryCmd, recordCmd, consistencyCmd)
	rootCmd.AddCommand(ledgerCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string) {
	doRequest(http.MethodGet, path, nil)
}

func postJSON(path string, payload map[string]any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	doRequest(http.MethodPost, path, body)
}

func doRequest(method, path string, body io.Reader) {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}

	fmt.Println(pretty.String())
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if consistent, ok := result["consistent"].(bool); ok && consistent {
		fmt.Println("Consistency check PASSED")
		return
	}

	fmt.Println("Consistency check FOUND MISMATCHES")
	if mismatches, ok := result["mismatches"].([]any); ok {
		for _, m := range mismatches {
			fmt.Printf("  %v\n", m)
		}
	}
	os.Exit(1)
}
