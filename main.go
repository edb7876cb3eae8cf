package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CrowderSoup/kanban/config"
)

var (
	envFile string

	rootCmd = &cobra.Command{
		Use:           "kanban",
		Short:         "Board engine for ordered lists of cards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the board API and the websocket event feed",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the board database schema",
		RunE:  runMigrate,
	}
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user id",
		RunE:  runToken,
	}
	tokenUser string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file with settings")
	rootCmd.PersistentFlags().String("db-path", "./kanban.db", "sqlite database file")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "text or json")

	serveCmd.Flags().Int("port", 3001, "HTTP listen port")
	serveCmd.Flags().Int("tx-max-retries", 4, "retries for a transaction that lost the write lock")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(migrateCmd)

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id to put in the token subject")
	tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(envFile, cmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
