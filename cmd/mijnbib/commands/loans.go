package commands

import (
	"github.com/spf13/cobra"
	"github.com/wvanhed/mijnbib/internal/serviceutil"
)

func init() {
	rootCmd.AddCommand(loansCmd)
}

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Retrieve loans for an account id.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := createClient(cfg)

		loans, err := client.Loans(cmd.Context(), requireAccountID(cfg))
		if err != nil {
			serviceutil.Fatal("failed to retrieve loans", err)
		}
		printJSON(loans)
	},
}
