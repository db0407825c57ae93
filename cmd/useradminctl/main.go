// Command useradminctl drives the users backend from a terminal.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "useradminctl", SilenceUsage: true}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "Users API base URL (defaults to USERS_API_URL)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Request timeout (defaults to USERS_API_TIMEOUT)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json)")

	rootCmd.AddCommand(newUsersCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
