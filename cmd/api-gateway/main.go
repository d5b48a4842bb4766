package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title City Intranet API
// @version 1.0.0
// @description Procedure-style backend for the municipal office intranet
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var rootCmd = &cobra.Command{
	Use:   "city-intranet-api",
	Short: "City intranet API",
	Long:  `Backend for staff accounts, documents, tasks, announcements and dashboards.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
