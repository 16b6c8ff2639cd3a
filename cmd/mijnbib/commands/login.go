package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wvanhed/mijnbib"
	"github.com/wvanhed/mijnbib/internal/serviceutil"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Just log in, and report if success or not.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := createClient(cfg)

		err := client.Login(cmd.Context())
		var authErr *mijnbib.AuthenticationError
		if errors.As(err, &authErr) {
			fmt.Println(authErr.Msg)
			fmt.Println("logged in: false")
			return
		}
		if err != nil {
			serviceutil.Fatal("failed to log in", err)
		}
		fmt.Println("logged in: true")
	},
}
