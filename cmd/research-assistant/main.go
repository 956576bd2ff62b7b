package main

import (
	"context"
	"os"

	"github.com/upb/research-assistant/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
