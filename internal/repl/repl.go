// Package repl implements the interactive driving loop: a readline-based
// conversation with the active mode, plus slash commands for state and
// lifecycle management.
//
// The loop awaits every controller call before reading the next line, so no
// operation on a mode instance is ever re-entered while another is in
// flight.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"

	"parley/internal/formatting"
	"parley/internal/mode"
	"parley/internal/state"
	"parley/pkg/logging"
)

const subsystem = "REPL"

// Options configures the interactive loop.
type Options struct {
	// HistoryFile persists command history across sessions. The
	// application points this at the runtime root; empty falls back to a
	// file in the system temp directory.
	HistoryFile string

	// Quiet suppresses the spinner and timing output.
	Quiet bool

	// Output receives all rendered output; defaults to stdout.
	Output io.Writer
}

// REPL drives a conversation with one active mode at a time.
type REPL struct {
	registry   *mode.Registry
	controller *mode.Controller
	formatter  *formatting.Formatter
	options    Options
	out        io.Writer
}

// New creates a REPL starting in the named mode.
func New(registry *mode.Registry, modeID string, formatter *formatting.Formatter, options Options) (*REPL, error) {
	controller, err := registry.Get(modeID)
	if err != nil {
		return nil, err
	}
	if options.Output == nil {
		options.Output = os.Stdout
	}
	return &REPL{
		registry:   registry,
		controller: controller,
		formatter:  formatter,
		options:    options,
		out:        options.Output,
	}, nil
}

// ActiveMode returns the identifier of the current mode.
func (r *REPL) ActiveMode() string {
	return r.controller.ID()
}

func (r *REPL) prompt() string {
	return fmt.Sprintf("parley(%s)> ", r.controller.ID())
}

func (r *REPL) historyFile() string {
	if r.options.HistoryFile != "" {
		return r.options.HistoryFile
	}
	return filepath.Join(os.TempDir(), ".parley_history")
}

// Run enters the main interaction loop. It returns on context
// cancellation, EOF (Ctrl+D), or the quit command; Ctrl+C clears the
// current line.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            r.prompt(),
		HistoryFile:       r.historyFile(),
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	logging.Info(subsystem, "Interactive session started in mode %s", r.controller.ID())
	fmt.Fprintln(r.out, "Type /help for commands; an empty line shows the current question.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		quit, err := r.handleLine(ctx, line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		if quit {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		rl.SetPrompt(r.prompt())
	}
}

// handleLine dispatches one line of input: slash commands are handled by
// the loop itself, anything else is a conversation turn for the active
// mode. The returned flag requests loop termination.
func (r *REPL) handleLine(ctx context.Context, line string) (bool, error) {
	input := strings.TrimSpace(line)
	if !strings.HasPrefix(input, "/") {
		r.executeTurn(ctx, input)
		return false, nil
	}

	fields := strings.Fields(input)
	command, args := fields[0], fields[1:]

	switch command {
	case "/help":
		r.printHelp()
		return false, nil
	case "/quit", "/exit":
		return true, nil
	case "/modes":
		return false, r.formatter.ModeList(r.registry.Descriptors())
	case "/mode":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: /mode <id>")
		}
		return false, r.switchMode(ctx, args[0])
	case "/state":
		return false, r.showState()
	case "/save":
		return false, r.saveState()
	case "/clear":
		return false, r.clearState(args)
	case "/validate":
		return false, r.formatter.Report(r.controller.ID(), r.controller.Validate(ctx))
	default:
		return false, fmt.Errorf("unknown command %s; type /help", command)
	}
}

// executeTurn runs one conversation turn with a progress spinner.
func (r *REPL) executeTurn(ctx context.Context, input string) {
	var s *spinner.Spinner
	if !r.options.Quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Thinking..."
		s.Start()
	}

	result := r.controller.ExecuteWithResult(ctx, input)
	if s != nil {
		s.Stop()
	}

	if err := r.formatter.Result(result); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

// switchMode cleans up the current mode and activates another one.
func (r *REPL) switchMode(ctx context.Context, id string) error {
	if id == r.controller.ID() {
		return nil
	}

	next, err := r.registry.Get(id)
	if err != nil {
		return err
	}
	if err := r.controller.Cleanup(ctx); err != nil {
		return err
	}

	r.controller = next
	fmt.Fprintf(r.out, "Switched to mode %s.\n", id)
	return nil
}

func (r *REPL) showState() error {
	store := r.controller.Store()
	if store == nil {
		fmt.Fprintln(r.out, "Mode is not initialized yet; no state to show.")
		return nil
	}

	record, err := store.Load("")
	if err != nil {
		return err
	}
	if record == nil {
		return r.formatter.StateList(nil)
	}
	return r.formatter.StateList([]*state.Record{record})
}

// saveState persists the latest record explicitly, which also makes any
// in-memory schema migration stick.
func (r *REPL) saveState() error {
	store := r.controller.Store()
	if store == nil {
		fmt.Fprintln(r.out, "Mode is not initialized yet; nothing to save.")
		return nil
	}

	record, err := store.Load("")
	if err != nil {
		return err
	}
	if record == nil {
		fmt.Fprintln(r.out, "No state to save yet.")
		return nil
	}

	if _, err := store.Save(record); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Saved state %s.\n", record.ID)
	return nil
}

func (r *REPL) clearState(args []string) error {
	store := r.controller.Store()
	if store == nil {
		fmt.Fprintln(r.out, "Mode is not initialized yet; nothing to clear.")
		return nil
	}

	stateID := ""
	if len(args) > 0 {
		stateID = args[0]
	}
	if err := store.Clear(stateID); err != nil {
		return err
	}

	if stateID == "" {
		fmt.Fprintf(r.out, "Cleared all state for mode %s.\n", r.controller.ID())
	} else {
		fmt.Fprintf(r.out, "Cleared state %s.\n", stateID)
	}
	return nil
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `Commands:
  /help           show this help
  /modes          list registered modes
  /mode <id>      switch to another mode
  /state          show the latest stored state
  /save           persist the latest state explicitly
  /clear [id]     clear one state record, or all for this mode
  /validate       validate the active mode
  /quit           leave the session

Anything else is sent to the active mode as conversation input.
`)
}

func (r *REPL) completer() readline.AutoCompleter {
	modeItems := make([]readline.PrefixCompleterInterface, 0, len(r.registry.IDs()))
	for _, id := range r.registry.IDs() {
		modeItems = append(modeItems, readline.PcItem(id))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("/help"),
		readline.PcItem("/modes"),
		readline.PcItem("/mode", modeItems...),
		readline.PcItem("/state"),
		readline.PcItem("/save"),
		readline.PcItem("/clear"),
		readline.PcItem("/validate"),
		readline.PcItem("/quit"),
		readline.PcItem("/exit"),
	)
}
