package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wvanhed/mijnbib"
	"github.com/wvanhed/mijnbib/internal/configutil"
	"github.com/wvanhed/mijnbib/internal/serviceutil"
)

type Config struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	City      string `json:"city"`
	AccountID string `json:"accountId"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("mijnbib.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}

	if username != "" {
		cfg.Username = username
	}
	if password != "" {
		cfg.Password = password
	}
	if city != "" {
		cfg.City = city
	}
	if accountID != "" {
		cfg.AccountID = accountID
	}

	if cfg.Username == "" || cfg.Password == "" {
		serviceutil.Fatal("missing credentials", fmt.Errorf(
			"specify username and password as flags or in mijnbib.json5"))
	}
	return cfg
}

func createClient(cfg Config) *mijnbib.Client {
	client, err := mijnbib.NewClient(cfg.Username, cfg.Password, mijnbib.Options{City: cfg.City})
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}
	return client
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		serviceutil.Fatal("failed to render result", err)
	}
	fmt.Println(string(out))
}

func requireAccountID(cfg Config) string {
	if cfg.AccountID == "" {
		serviceutil.Fatal("missing account id", fmt.Errorf(
			"specify an account id with --accountid or in mijnbib.json5"))
	}
	return cfg.AccountID
}
