package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pageza/foodtracking/backend/config"
	"github.com/pageza/foodtracking/backend/internal/app"
)

func main() {
	root := RootCommand(func(ctx context.Context) (*app.App, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		return app.New(ctx, cfg)
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
