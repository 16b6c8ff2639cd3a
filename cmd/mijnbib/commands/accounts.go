package commands

import (
	"github.com/spf13/cobra"
	"github.com/wvanhed/mijnbib/internal/serviceutil"
)

func init() {
	rootCmd.AddCommand(accountsCmd)
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Retrieve accounts.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := createClient(cfg)

		accounts, err := client.Accounts(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to retrieve accounts", err)
		}
		printJSON(accounts)
	},
}
