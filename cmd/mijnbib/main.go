package main

import (
	"context"

	"github.com/wvanhed/mijnbib/cmd/mijnbib/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
