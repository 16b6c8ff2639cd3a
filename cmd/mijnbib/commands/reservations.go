package commands

import (
	"github.com/spf13/cobra"
	"github.com/wvanhed/mijnbib/internal/serviceutil"
)

func init() {
	rootCmd.AddCommand(reservationsCmd)
}

var reservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Retrieve reservations for an account id.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := createClient(cfg)

		holds, err := client.Reservations(cmd.Context(), requireAccountID(cfg))
		if err != nil {
			serviceutil.Fatal("failed to retrieve reservations", err)
		}
		printJSON(holds)
	},
}
