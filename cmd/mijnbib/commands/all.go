package commands

import (
	"github.com/spf13/cobra"
	"github.com/wvanhed/mijnbib/internal/serviceutil"
)

func init() {
	rootCmd.AddCommand(allCmd)
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Retrieve all information for all accounts.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := createClient(cfg)

		info, err := client.AllInfo(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to retrieve information", err)
		}
		printJSON(info)
	},
}
