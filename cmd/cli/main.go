package main

import (
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
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "walletd-cli",
		Short: "walletd CLI tool",
		Long:  `A command line interface for interacting with the walletd API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the walletd API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Wallet commands
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	balanceCmd := &cobra.Command{
		Use:   "balance [wallet-id]",
		Short: "Show a wallet's balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getAndPrint("/api/v1/wallets/" + args[0] + "/balance")
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [wallet-id]",
		Short: "Check a wallet's ledger invariants",
		Run: func(cmd *cobra.Command, args []string) {
			checkReconciliation(args[0])
		},
		Args: cobra.ExactArgs(1),
	}

	walletCmd.AddCommand(balanceCmd)
	walletCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(walletCmd)

	// Escrow commands
	escrowCmd := &cobra.Command{
		Use:   "escrow",
		Short: "Escrow operations",
	}

	escrowGetCmd := &cobra.Command{
		Use:   "get [escrow-id]",
		Short: "Show an escrow",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getAndPrint("/api/v1/escrows/" + args[0])
		},
	}

	escrowCmd.AddCommand(escrowGetCmd)
	rootCmd.AddCommand(escrowCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getAndPrint(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printJSON(result)
}

func checkReconciliation(walletID string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/wallets/" + walletID + "/reconcile")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Reconciliation check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if reconciled, ok := result["is_reconciled"].(bool); ok && reconciled {
		fmt.Printf("Reconciliation check PASSED\n")
	} else {
		fmt.Printf("Reconciliation check FAILED\n")
		if msg, ok := result["invariant_error"].(string); ok && msg != "" {
			fmt.Printf("Error: %s\n", msg)
		}
	}
	fmt.Printf("Balance: %v\n", result["balance"])
	fmt.Printf("Escrow held: %v\n", result["escrow_held"])
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
