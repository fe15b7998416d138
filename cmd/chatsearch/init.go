package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"chatsearch/internal/config"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default configuration file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return initConfig(c.String("config"), c.Bool("force"))
		},
	}
}

func initConfig(path string, force bool) error {
	svc := config.NewService(path)
	if _, err := os.Stat(svc.Path()); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", svc.Path())
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := svc.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration initialized at %s\n", svc.Path())
	return nil
}
