package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commandHelp))
	for _, name := range []string{
		"ls", "cd", "pwd", "add", "rm", "mv", "show", "rename", "write",
		"append", "collapse", "expand", "tree", "lang", "exit",
	} {
		items = append(items, readline.PcItem(name))
	}
	help := make([]readline.PrefixCompleterInterface, 0, len(commandHelp))
	for name := range commandHelp {
		help = append(help, readline.PcItem(name))
	}
	items = append(items, readline.PcItem("help", help...))
	return readline.NewPrefixCompleter(items...)
}

// Run reads commands until exit or EOF. historyFile may be empty.
func (s *Shell) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.Prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	s.out = rl.Stdout()
	s.Confirm = func(question string) bool {
		rl.SetPrompt(fmt.Sprintf("%s (%s/N) ", question, s.tr.T("yes")))
		defer rl.SetPrompt(s.Prompt())
		answer, err := rl.Readline()
		if err != nil {
			return false
		}
		return Confirmed(answer, s.tr.T("yes"))
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, "Use 'exit' or 'quit' to exit the program.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.ExecuteLine(line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			s.log.Debug("shell command failed", zap.Error(err))
			fmt.Fprintf(s.out, "%s: %v\n", s.tr.T("error"), err)
		}
		rl.SetPrompt(s.Prompt())
	}
}

// Confirmed reports whether answer starts with the localized yes (or "y").
func Confirmed(answer, yes string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a != "" && (strings.HasPrefix(a, yes) || strings.HasPrefix(a, "y"))
}
