package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/pipeline"
	"github.com/mzorec/logsift/internal/tui"
)

// UICmd launches an interactive TUI for browsing normalized records.
type UICmd struct {
	File     string `arg:"" required:"" help:"Log file to browse"`
	Pattern  string `short:"p" aliases:"filter" help:"Regex pattern to filter record messages"`
	Exclude  string `short:"x" help:"Regex pattern to exclude from record messages"`
	Service  string `help:"Only show records from this service (trailing * for prefix match)"`
	MaxLines int    `help:"Stop after N input lines (0 = unlimited)"`
}

// Run executes the UI command
func (c *UICmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	chain, err := buildFilterChain(globals, c.Pattern, c.Exclude, c.Service)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	recordCh := make(chan *domain.Record, 256)
	errCh := make(chan error, 16)

	coord := pipeline.New(newPipelineLogger(globals), nil)

	go func() {
		defer close(recordCh)
		defer close(errCh)
		_, err := coord.ParseFile(ctx, c.File, pipeline.Options{
			MaxLines: c.MaxLines,
			OnRecord: func(r *domain.Record) {
				if !chain.Match(r) {
					return
				}
				select {
				case recordCh <- r:
				case <-ctx.Done():
				}
			},
			OnError: func(err error, lineNumber int, rawLine string) {
				select {
				case errCh <- err:
				default:
				}
			},
		})
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	model := tui.New(c.File, domain.FormatUnknown, recordCh, errCh)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
