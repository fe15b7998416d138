package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"chatsearch/internal/domain"
	"chatsearch/internal/eventbus"
)

// importFile is the TOML layout accepted by the import command:
//
//	[[message]]
//	chat = 1
//	id = 42
//	author = "alice"
//	text = "see you at the deploy"
//	date = 2024-03-01T12:00:00Z
type importFile struct {
	Messages []importMessage `toml:"message"`
}

type importMessage struct {
	Chat   int64     `toml:"chat"`
	ID     int64     `toml:"id"`
	Thread int64     `toml:"thread"`
	Author string    `toml:"author"`
	Kind   string    `toml:"kind"`
	Text   string    `toml:"text"`
	Date   time.Time `toml:"date"`
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load messages from a TOML file into the search index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Messages file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := openEnv(c, true)
			if err != nil {
				return err
			}
			defer e.Close()

			messages, err := readMessages(c.String("file"))
			if err != nil {
				return err
			}

			n, err := e.index.Import(ctx, messages)
			if err != nil {
				return fmt.Errorf("importing messages: %w", err)
			}
			e.bus.Publish(eventbus.IndexImportedEvent{Count: n})
			fmt.Printf("Imported %d messages into %s\n", n, e.cfg.Database)
			return nil
		},
	}
}

// readMessages parses and validates a messages file
func readMessages(path string) ([]domain.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading messages file: %w", err)
	}

	var file importFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing messages file: %w", err)
	}

	known := map[domain.ContentKind]bool{domain.ContentAny: true}
	for _, k := range domain.ContentKinds {
		known[k] = true
	}

	messages := make([]domain.Message, 0, len(file.Messages))
	for i, m := range file.Messages {
		if m.Chat == 0 || m.ID <= 0 {
			return nil, fmt.Errorf("message %d: chat and a positive id are required", i+1)
		}
		kind := domain.ContentKind(m.Kind)
		if !known[kind] {
			return nil, fmt.Errorf("message %d: unknown kind %q", i+1, m.Kind)
		}
		messages = append(messages, domain.Message{
			ID:       domain.MessageID{ChatID: m.Chat, MessageID: m.ID},
			ThreadID: m.Thread,
			Author:   m.Author,
			Kind:     kind,
			Text:     m.Text,
			Date:     m.Date,
		})
	}
	return messages, nil
}
