// Package main implements hcpctl, a command-line client for the HCP interaction backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hcp-crm/internal/apiclient"
	"hcp-crm/internal/interaction"
)

var (
	// serverURL is the base URL of the hcp-api server
	serverURL string
	timeout   time.Duration
	asJSON    bool
	version   = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hcpctl",
	Short: "CLI for the HCP interaction backend",
	Long: `hcpctl talks to the hcp-api server. It can log an interaction from free text,
list stored interactions newest first and check server health.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	def := os.Getenv("HCP_API_URL")
	if def == "" {
		def = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", def, "hcp-api server URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	rootCmd.AddCommand(chatCmd, listCmd, healthCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat <text...>",
	Short: "Describe an interaction and let the assistant log it",
	Long: `Send a free-text description to the assistant. The reply and the
extracted form fields are printed.

Examples:
  hcpctl chat "Met Dr. Smith today, discussed Product X efficacy, positive"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged interactions, newest first",
	RunE:  runList,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check hcp-api server health",
	RunE:  runHealth,
}

func newClient() *apiclient.Client {
	return apiclient.New(serverURL, nil, nil)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func runChat(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("message must not be empty")
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	resp, err := newClient().Chat(ctx, text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Reply)
	fields := interaction.ToFormFields(resp.ExtractedData)
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, k := range names {
		fmt.Fprintf(w, "%s\t%s\n", k, fields[k])
	}
	return w.Flush()
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	records, err := newClient().ListInteractions(ctx)
	if err != nil {
		return err
	}
	records = interaction.DisplayOrder(records)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	fmt.Fprintf(out, "%d Total Entries\n", len(records))
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHCP\tTYPE\tDATE\tTOPICS")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.HCPName,
			r.InteractionType,
			interaction.FormatDate(r.Date, time.Local),
			interaction.Truncate(interaction.Or(r.Topics, "No topics recorded"), 60),
		)
	}
	return w.Flush()
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	resp, err := newClient().Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to reach %s: %v\n", serverURL, err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Server Status: %s\nServer URL: %s\n", resp.Status, serverURL)
	return nil
}
