package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	username  string
	password  string
	city      string
	accountID string
)

var rootCmd = &cobra.Command{
	Use:   "mijnbib",
	Short: "mijnbib interacts with the bibliotheek.be website, e.g. to retrieve loans, reservations or accounts.",
	Long: "mijnbib interacts with the bibliotheek.be website, e.g. to retrieve loans,\n" +
		"reservations or accounts.\n\n" +
		"Credentials can be passed as flags, or more conveniently through a\n" +
		"mijnbib.json5 file in the working directory:\n\n" +
		"    { username: \"john\", password: \"123456\", accountId: \"456\" }",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logging")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username or email address")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "password")
	rootCmd.PersistentFlags().StringVarP(&city, "city", "c", "", "optional subdomain, typically your city")
	rootCmd.PersistentFlags().StringVarP(&accountID, "accountid", "a", "", "account id")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
