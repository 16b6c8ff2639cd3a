package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wvanhed/mijnbib"
	"github.com/wvanhed/mijnbib/internal/serviceutil"
)

var (
	extendIDs     *string
	extendExecute *bool
)

func init() {
	extendIDs = extendCmd.Flags().String("ids", "",
		"comma-separated accountid|extendid pairs, e.g. '123|456,123|789'")
	extendExecute = extendCmd.Flags().Bool("execute", false,
		"actually perform the extension instead of simulating it")
	rootCmd.AddCommand(extendCmd)
}

var extendCmd = &cobra.Command{
	Use:   "extend --ids <accountid|extendid,...> [--execute]",
	Short: "Extend loans by their extend ids.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client := createClient(cfg)

		var reqs []mijnbib.ExtendRequest
		for _, pair := range strings.Split(*extendIDs, ",") {
			accID, extID, found := strings.Cut(strings.TrimSpace(pair), "|")
			if !found || accID == "" || extID == "" {
				serviceutil.Fatal("invalid ids flag", fmt.Errorf(
					"expected accountid|extendid pairs, got %q", pair))
			}
			reqs = append(reqs, mijnbib.ExtendRequest{AccountID: accID, ExtendID: extID})
		}

		result, err := client.ExtendLoansByIDs(cmd.Context(), reqs, *extendExecute)
		if err != nil {
			serviceutil.Fatal("failed to extend loans", err)
		}
		printJSON(result)
	},
}
