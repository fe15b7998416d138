package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"chatsearch/internal/domain"
	"chatsearch/internal/search"
	"chatsearch/internal/ui"
)

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Search a conversation interactively",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "chat",
				Usage:    "Conversation to search",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "thread",
				Usage: "Only search inside this thread",
			},
			&cli.BoolFlag{
				Name:  "secret",
				Usage: "Search the chat as a secret conversation",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := openEnv(c, false)
			if err != nil {
				return err
			}
			defer e.Close()

			opts := ui.Options{
				ChatID:   int64(c.Int("chat")),
				ThreadID: int64(c.Int("thread")),
				Settings: e.cfg.UI,
				Logger:   e.logger.Named("ui"),
			}
			if c.Bool("secret") {
				opts.Variant = domain.VariantRestricted
			}

			exec := ui.NewExecutor()
			manager := search.NewManager(e.backend(), search.NewBusDelegate(e.bus), exec, e.managerOptions()...)
			model := ui.NewModel(manager, opts)

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			exec.Bind(p)
			model.SetProgram(p)

			stop := ui.Forward(e.bus, p)
			defer stop()

			e.logger.Info("starting UI")
			if _, err := p.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
				return fmt.Errorf("running program: %w", err)
			}
			manager.Dismiss()
			e.logger.Info("UI exited normally")
			return nil
		},
	}
}
