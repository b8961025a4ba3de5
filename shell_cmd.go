package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/mykisan/kisan/ui"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  market CROP [LOCATION]       current prices and best markets
  schemes QUERY                government schemes you may qualify for
  diagnose IMAGE [SYMPTOMS]    diagnose a crop disease from a photo
  help                         show this help
  quit                         leave the shell
`

var errQuit = errors.New("quit")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Ask questions in an interactive prompt",
	Long:  paragraph(fmt.Sprintf("\nAn interactive prompt for the farming tools, %s.", keyword("without the full-screen interface"))),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := openBackends(false)
		if err != nil {
			return err
		}
		defer b.Close() //nolint:errcheck

		historyFile := ""
		if dir, err := cacheDir(); err == nil {
			historyFile = filepath.Join(filepath.Dir(dir), "shell_history")
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          keyword("kisan› "),
			HistoryFile:     historyFile,
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
			AutoComplete: readline.NewPrefixCompleter(
				readline.PcItem("market"),
				readline.PcItem("schemes"),
				readline.PcItem("diagnose"),
				readline.PcItem("help"),
				readline.PcItem("quit"),
			),
		})
		if err != nil {
			return fmt.Errorf("unable to start shell: %w", err)
		}
		defer rl.Close() //nolint:errcheck

		sh := &shell{tools: b.client, history: b.recorder(), out: rl.Stdout(), location: location}
		fmt.Fprint(sh.out, shellHelp)
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("unable to read input: %w", err)
			}
			if err := sh.exec(context.Background(), line); errors.Is(err, errQuit) {
				return nil
			} else if err != nil {
				log.Error("shell command failed", "line", line, "error", err)
				fmt.Fprintln(sh.out, errorStyle("Error: "+err.Error()))
			}
		}
	},
}

// shell runs one tool command per input line.
type shell struct {
	tools    ui.Tools
	history  ui.History
	out      io.Writer
	location string
}

func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		_, err := fmt.Fprint(s.out, shellHelp)
		return err //nolint:wrapcheck
	case "market":
		if len(args) == 0 {
			return errors.New("usage: market CROP [LOCATION]")
		}
		loc := s.location
		if len(args) > 1 {
			loc = strings.Join(args[1:], " ")
		}
		return respond(ctx, s.out, s.history, marketAnswer(ctx, s.tools, args[0], loc))
	case "schemes":
		if len(args) == 0 {
			return errors.New("usage: schemes QUERY")
		}
		return respond(ctx, s.out, s.history, schemesAnswer(ctx, s.tools, strings.Join(args, " ")))
	case "diagnose":
		if len(args) == 0 {
			return errors.New("usage: diagnose IMAGE [SYMPTOMS]")
		}
		a, err := diagnoseAnswer(ctx, s.tools, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return respond(ctx, s.out, s.history, a)
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
}
