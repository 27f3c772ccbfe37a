package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/splitledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	actorID string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "splitledger-cli",
		Short: "SplitLedger CLI tool",
		Long:  `A command line interface for operating the SplitLedger commission API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the SplitLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "cli", "Acting user ID sent with mutating requests")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check allocation and snapshot balance invariants",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Dispute commands
	disputesCmd := &cobra.Command{
		Use:   "disputes",
		Short: "Dispute operations",
	}

	escalateCmd := &cobra.Command{
		Use:   "escalate-overdue",
		Short: "Escalate every dispute past its SLA deadline",
		Run: func(cmd *cobra.Command, args []string) {
			escalateOverdue()
		},
	}

	disputesCmd.AddCommand(escalateCmd)
	rootCmd.AddCommand(disputesCmd)

	// Snapshot commands
	snapshotsCmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Snapshot operations",
	}

	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List snapshots awaiting approval",
		Run: func(cmd *cobra.Command, args []string) {
			listPending()
		},
	}

	snapshotsCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(snapshotsCmd)

	// Migration commands
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(false)
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(true)
		},
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkConsistency() {
	body, status := get("/api/v1/ledger/consistency")
	if status != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Consistent bool `json:"consistent"`
		Violations []struct {
			SnapshotID   string `json:"snapshot_id"`
			AllocationID string `json:"allocation_id"`
			Detail       string `json:"detail"`
		} `json:"violations"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if result.Consistent {
		fmt.Println("Consistency check PASSED")
		return
	}

	fmt.Printf("Consistency check FAILED: %d violation(s)\n", len(result.Violations))
	for _, v := range result.Violations {
		fmt.Printf("  snapshot=%s allocation=%s %s\n", v.SnapshotID, v.AllocationID, v.Detail)
	}
	os.Exit(1)
}

func escalateOverdue() {
	body, status := post("/api/v1/disputes/escalate-overdue", "")
	if status != http.StatusOK {
		fmt.Printf("Escalation FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Escalated int `json:"escalated"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Escalated %d dispute(s)\n", result.Escalated)
}

func listPending() {
	body, status := get("/api/v1/snapshots/pending")
	if status != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var snapshots []struct {
		ID              string `json:"id"`
		DealID          string `json:"deal_id"`
		Version         int64  `json:"version"`
		PoolAmountMinor string `json:"pool_amount_minor"`
		MakerID         string `json:"maker_id"`
	}
	if err := json.Unmarshal(body, &snapshots); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if len(snapshots) == 0 {
		fmt.Println("No snapshots pending approval")
		return
	}

	for _, s := range snapshots {
		fmt.Printf("%s  deal=%s v%d  pool=%s  maker=%s\n", s.ID, s.DealID, s.Version, s.PoolAmountMinor, s.MakerID)
	}
}

func runMigrations(down bool) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("DATABASE_URL is required")
		os.Exit(1)
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	var err error
	if down {
		err = postgres.RunMigrationsDown(databaseURL, migrationsPath)
	} else {
		err = postgres.RunMigrations(databaseURL, migrationsPath)
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration complete")
}

func get(path string) ([]byte, int) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}

func post(path, payload string) ([]byte, int) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, strings.NewReader(payload))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", actorID)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}
