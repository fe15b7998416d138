package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"

	"chatsearch/internal/backend"
	"chatsearch/internal/domain"
	"chatsearch/internal/search"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Walk every match of a query and print it",
		ArgsUsage: "QUERY",
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
			&cli.StringFlag{
				Name:  "from",
				Usage: "Only messages by this author",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only this kind of content (text, photo, video, document, voice, link)",
			},
			&cli.BoolFlag{
				Name:  "secret",
				Usage: "Search the chat as a secret conversation (token paging, no total count)",
			},
			&cli.IntFlag{
				Name:  "locate",
				Usage: "Start at this message id once it is found",
			},
			&cli.IntFlag{
				Name:  "max",
				Usage: "Stop after printing this many matches (0 prints all)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			p, err := paramsFromFlags(c)
			if err != nil {
				return err
			}

			e, err := openEnv(c, true)
			if err != nil {
				return err
			}
			defer e.Close()

			return runHeadless(ctx, e.backend(), e.managerOptions(), p, c.Int("max"), os.Stdout)
		},
	}
}

func paramsFromFlags(c *cli.Command) (search.Params, error) {
	chatID := int64(c.Int("chat"))
	p := search.Params{
		ChatID:   chatID,
		ThreadID: int64(c.Int("thread")),
		Query:    strings.Join(c.Args().Slice(), " "),
		Author:   c.String("from"),
		Kind:     domain.ContentKind(c.String("kind")),
	}
	if c.Bool("secret") {
		p.Variant = domain.VariantRestricted
	}
	if id := c.Int("locate"); id > 0 {
		p.Locate = domain.MessageID{ChatID: chatID, MessageID: int64(id)}
	}

	if p.Kind != domain.ContentAny {
		valid := false
		for _, k := range domain.ContentKinds {
			valid = valid || k == p.Kind
		}
		if !valid {
			return p, fmt.Errorf("unknown kind %q", p.Kind)
		}
	}
	return p, nil
}

// runHeadless drives one search session to the end of its results,
// printing every match it lands on
func runHeadless(ctx context.Context, b backend.Backend, opts []search.Option, p search.Params, limit int, out io.Writer) error {
	exec := search.NewLoopExecutor()
	defer exec.Close()

	w := &walker{
		out:   out,
		exec:  exec,
		limit: limit,
		last:  -1,
		done:  make(chan struct{}),
	}
	exec.Call(func() {
		w.manager = search.NewManager(b, w, exec, opts...)
		w.manager.Search(p)
	})

	var err error
	select {
	case <-w.done:
		err = w.err
	case <-ctx.Done():
		err = ctx.Err()
	}
	exec.Call(func() { w.manager.Dismiss() })
	return err
}

// walker is a search delegate that steps forward after every shown match.
// All of its methods run on the executor loop.
type walker struct {
	out     io.Writer
	exec    search.Executor
	manager *search.Manager
	limit   int

	printed int
	last    int
	err     error

	done chan struct{}
	once sync.Once
}

func (w *walker) finish(err error) {
	w.once.Do(func() {
		if w.err == nil {
			w.err = err
		}
		close(w.done)
	})
}

func (w *walker) OnResult(index, totalCount int, id domain.MessageID) {
	switch index {
	case domain.IndexLoading:
		return
	case domain.IndexNoInput:
		fmt.Fprintln(w.out, "# nothing to search for")
		w.finish(nil)
		return
	case domain.IndexNoResults:
		fmt.Fprintln(w.out, "# no results")
		w.finish(nil)
		return
	}

	if index != w.last {
		w.last = index
		if msg, ok := w.manager.Message(index); ok {
			w.print(index, totalCount, msg)
		}
		if w.limit > 0 && w.printed >= w.limit {
			w.finish(nil)
			return
		}
	}

	// step from the loop, not from inside the callback
	w.exec.Post(func() {
		if err := w.manager.MoveTo(domain.DirectionNext); err != nil {
			w.finish(err)
		}
	})
}

func (w *walker) print(index, total int, m domain.Message) {
	w.printed++
	date := ""
	if !m.Date.IsZero() {
		date = m.Date.Local().Format("2006-01-02 15:04")
	}
	fmt.Fprintf(w.out, "%d/%d\t#%d\t%s\t%s\t%s\n", index+1, total, m.ID.MessageID, date, m.Author, m.Text)
}

func (w *walker) OnTotalCountChanged(index, totalCount int) {
	fmt.Fprintf(w.out, "# total %d\n", totalCount)
}

func (w *walker) OnAwaitNext(dir domain.Direction) {}

func (w *walker) OnRequestOlderPage() {}

func (w *walker) OnRequestNewerPage() {
	fmt.Fprintf(w.out, "# end of results, %d shown\n", w.printed)
	w.finish(nil)
}

func (w *walker) OnSearchError(err error) {
	fmt.Fprintf(w.out, "# search failed: %v\n", err)
	w.err = err
}
