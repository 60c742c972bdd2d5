package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/fetchr/internal/cli"
	"github.com/studiowebux/fetchr/internal/config"
	"github.com/studiowebux/fetchr/internal/curl"
	"github.com/studiowebux/fetchr/internal/executor"
	"github.com/studiowebux/fetchr/internal/postman"
	"github.com/studiowebux/fetchr/internal/store"
	"github.com/studiowebux/fetchr/internal/tui"
	"github.com/studiowebux/fetchr/internal/types"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fetchr",
	Short: "fetchr - local API testing client",
	Long: `fetchr is a local API testing client: collections, environments,
request history and a curl exporter, with an interactive TUI.

Run without arguments to start the TUI, or use the subcommands for
scripting.

Examples:
  fetchr                               # Start interactive TUI
  fetchr run login                     # Execute the saved request named 'login'
  fetchr run login -e host=localhost   # Override a {{host}} variable
  fetchr run login --env-file .env     # Load overrides from a .env file
  fetchr run login -o json --filter 'items[?active]'
  fetchr import collection.json        # Import a Postman collection
  fetchr curl login                    # Print the request as a curl command`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		return tui.Run(s)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <request-id-or-name>",
	Short: "Execute a saved request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		return cli.Run(s, cli.RunOptions{
			Target:       args[0],
			ExtraVars:    flagExtraVars,
			EnvFile:      flagEnvFile,
			OutputFormat: flagOutput,
			Filter:       flagFilter,
			Query:        flagQuery,
			ShowFull:     flagFull,
			Timeout:      flagTimeout,
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a Postman collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		imported, err := postman.Parse(data)
		if err != nil {
			return err
		}

		s, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		rootID, err := s.Import(imported)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %q (%d requests) as collection %s\n",
			imported.Name, len(imported.Requests), rootID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <collection-id>",
	Short: "Export a collection as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		out, err := s.Export(args[0])
		if err != nil {
			return err
		}

		if flagExportFile != "" {
			if err := os.WriteFile(flagExportFile, []byte(out), config.FilePermissions); err != nil {
				return fmt.Errorf("failed to write %s: %w", flagExportFile, err)
			}
			fmt.Fprintf(os.Stderr, "Exported to %s\n", flagExportFile)
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent request history",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		if flagHistoryClear {
			if err := s.ClearHistory(); err != nil {
				return err
			}
			fmt.Println("History cleared")
			return nil
		}

		entries := s.History()
		if flagHistoryCount > 0 && flagHistoryCount < len(entries) {
			entries = entries[:flagHistoryCount]
		}
		for _, entry := range entries {
			fmt.Printf("%s  %3d  %-7s %s  %s\n",
				entry.CreatedAt, entry.Status, entry.Method, entry.URL,
				executor.FormatDuration(entry.ResponseTime))
		}
		return nil
	},
}

var curlCmd = &cobra.Command{
	Use:   "curl <request-id-or-name>",
	Short: "Print a saved request as a curl command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		req, err := s.GetRequest(args[0])
		if err != nil {
			return err
		}
		if req == nil {
			req = s.FindRequestByName(args[0])
		}
		if req == nil {
			return fmt.Errorf("request not found: %s", args[0])
		}

		fmt.Println(curl.Generate(types.DraftFromRequest(req)))
		return nil
	},
}

// Flags for run
var (
	flagOutput    string
	flagFull      bool
	flagExtraVars []string
	flagEnvFile   string
	flagFilter    string
	flagQuery     string
	flagTimeout   time.Duration
)

// Flags for export and history
var (
	flagExportFile   string
	flagHistoryCount int
	flagHistoryClear bool
)

func init() {
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (json/yaml/body/text)")
	runCmd.Flags().BoolVarP(&flagFull, "full", "f", false, "Show full output (status, headers, body)")
	runCmd.Flags().StringArrayVarP(&flagExtraVars, "extra-vars", "e", []string{}, "Set variable (key=value), can be repeated")
	runCmd.Flags().StringVar(&flagEnvFile, "env-file", "", "Load variable overrides from a .env file")
	runCmd.Flags().StringVar(&flagFilter, "filter", "", "JMESPath filter applied to the response body")
	runCmd.Flags().StringVar(&flagQuery, "query", "", "JMESPath query or $(cmd) applied after the filter")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout (default 30s)")

	exportCmd.Flags().StringVarP(&flagExportFile, "output", "o", "", "Write the export to a file instead of stdout")

	historyCmd.Flags().IntVarP(&flagHistoryCount, "count", "n", 0, "Limit the number of entries shown")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Clear the history instead of listing it")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(curlCmd)
}

// openStore initializes config, opens the database, and loads the mirrors.
func openStore() (*store.Store, func(), error) {
	if err := config.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	backend, err := store.OpenSQLite(config.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	s := store.New(backend, executor.NewHTTPSender(flagTimeout))
	if err := s.LoadAll(); err != nil {
		backend.Close()
		return nil, nil, err
	}
	return s, func() { backend.Close() }, nil
}
