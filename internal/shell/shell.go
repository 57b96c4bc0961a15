// Package shell is the interactive front end over the node store. It keeps a
// transient current node (never persisted) and dispatches one-line commands.
package shell

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"notenodes/internal/db"
	"notenodes/internal/forest"
	"notenodes/internal/i18n"
)

// ErrExit is returned by Execute when the user asked to leave.
var ErrExit = errors.New("exit requested")

// Store is the subset of the node store the shell drives.
type Store interface {
	GetNode(id int64) (*db.Node, error)
	GetChildren(parentID *int64) ([]db.Node, error)
	CreateNode(title string, opts db.CreateNodeOpts) (int64, error)
	UpdateNode(id int64, u db.NodeUpdate) error
	SetCollapsed(id int64, collapsed bool) error
	DeleteNode(id int64) (int, error)
	UpdateNodeParent(id int64, parentID *int64) error
	Ancestors(id int64) ([]db.Node, error)
	GetSetting(key, def string) (string, error)
	SetSetting(key, value string) error
}

// Renderer turns Markdown into terminal output.
type Renderer interface {
	Render(markdown string) (string, error)
}

type Shell struct {
	store   Store
	out     io.Writer
	tr      *i18n.Translator
	render  Renderer
	log     *zap.Logger
	current *int64

	// Confirm asks a yes/no question; rm refuses when it returns false.
	Confirm func(question string) bool
}

// New builds a shell. A nil renderer prints content as-is.
func New(store Store, out io.Writer, tr *i18n.Translator, render Renderer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		store:   store,
		out:     out,
		tr:      tr,
		render:  render,
		log:     log,
		Confirm: func(string) bool { return false },
	}
}

// Current returns the selected node id, nil at the root level.
func (s *Shell) Current() *int64 {
	return s.current
}

// Prompt shows the selected node title.
func (s *Shell) Prompt() string {
	if s.current == nil {
		return "/> "
	}
	n, err := s.store.GetNode(*s.current)
	if err != nil || n == nil {
		return "/> "
	}
	return truncate(n.Title, 24) + "> "
}

// ParseArgs splits a line on spaces, keeping double-quoted runs together.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}
	return args
}

// ExecuteLine parses and runs one input line. Blank lines do nothing.
func (s *Shell) ExecuteLine(line string) error {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}
	return s.Execute(args)
}

// Execute runs one command. Store failures come back localized where a
// message exists; the caller prints them and keeps going.
func (s *Shell) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command provided")
	}
	s.log.Debug("shell command", zap.Strings("args", args))

	rest := args[1:]
	switch args[0] {
	case "ls":
		return s.handleList(rest)
	case "cd":
		return s.handleChange(rest)
	case "pwd":
		return s.handlePwd()
	case "add":
		return s.handleAdd(rest)
	case "rm":
		return s.handleRemove(rest)
	case "mv":
		return s.handleMove(rest)
	case "show", "cat":
		return s.handleShow(rest)
	case "rename":
		return s.handleRename(rest)
	case "write":
		return s.handleWrite(rest, false)
	case "append":
		return s.handleWrite(rest, true)
	case "collapse":
		return s.handleFold(rest, true)
	case "expand":
		return s.handleFold(rest, false)
	case "tree":
		return s.handleTree(rest)
	case "lang":
		return s.handleLang(rest)
	case "help":
		return s.handleHelp(rest)
	case "exit", "quit":
		return ErrExit
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// target resolves an optional node argument, defaulting to the current node.
func (s *Shell) target(args []string) (*db.Node, error) {
	if len(args) == 0 {
		if s.current == nil {
			return nil, errors.New(s.tr.T("no_selection"))
		}
		return s.lookup(*s.current)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid node id %q", args[0])
	}
	return s.lookup(id)
}

func (s *Shell) lookup(id int64) (*db.Node, error) {
	n, err := s.store.GetNode(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errors.New(s.tr.T("not_found", id))
	}
	return n, nil
}

func (s *Shell) handleList(args []string) error {
	parent := s.current
	if len(args) > 0 {
		n, err := s.target(args)
		if err != nil {
			return err
		}
		parent = &n.ID
	}
	children, err := s.store.GetChildren(parent)
	if err != nil {
		return err
	}
	if len(children) == 0 && parent == nil {
		fmt.Fprintln(s.out, s.tr.T("empty_tree"))
		return nil
	}
	for _, c := range children {
		grand, err := s.store.GetChildren(&c.ID)
		if err != nil {
			return err
		}
		marker := "•"
		if len(grand) > 0 {
			marker = "▾"
			if c.Collapsed {
				marker = "▸"
			}
		}
		fmt.Fprintf(s.out, "%s %d  %s\n", marker, c.ID, c.Title)
	}
	return nil
}

func (s *Shell) handleChange(args []string) error {
	if len(args) == 0 || args[0] == "/" {
		s.current = nil
		return nil
	}
	if args[0] == ".." {
		if s.current == nil {
			return nil
		}
		n, err := s.store.GetNode(*s.current)
		if err != nil {
			return err
		}
		if n == nil || n.ParentID == nil {
			s.current = nil
			return nil
		}
		parent, err := s.store.GetNode(*n.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			s.current = nil
			return nil
		}
		s.current = &parent.ID
		return nil
	}
	n, err := s.target(args)
	if err != nil {
		return err
	}
	s.current = &n.ID
	return nil
}

func (s *Shell) handlePwd() error {
	if s.current == nil {
		fmt.Fprintln(s.out, "/")
		return nil
	}
	n, err := s.lookup(*s.current)
	if err != nil {
		return err
	}
	ancestors, err := s.store.Ancestors(n.ID)
	if err != nil {
		return err
	}
	parts := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		parts = append(parts, ancestors[i].Title)
	}
	parts = append(parts, n.Title)
	fmt.Fprintln(s.out, "/"+strings.Join(parts, "/"))
	return nil
}

func (s *Shell) handleAdd(args []string) error {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		title = s.tr.T("new_node")
	}
	id, err := s.store.CreateNode(title, db.CreateNodeOpts{ParentID: s.current})
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.tr.T("created", id))
	return nil
}

func (s *Shell) handleRemove(args []string) error {
	n, err := s.target(args)
	if err != nil {
		return err
	}
	if !s.Confirm(fmt.Sprintf("%s (%d %s)", s.tr.T("delete_confirm"), n.ID, n.Title)) {
		return nil
	}
	removed, err := s.store.DeleteNode(n.ID)
	if err != nil {
		return err
	}
	if s.current != nil {
		still, err := s.store.GetNode(*s.current)
		if err != nil {
			return err
		}
		if still == nil {
			s.current = nil
		}
	}
	fmt.Fprintln(s.out, s.tr.T("deleted", removed))
	return nil
}

func (s *Shell) handleMove(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mv <id> <parent-id|/>")
	}
	n, err := s.target(args[:1])
	if err != nil {
		return err
	}
	var parent *int64
	if args[1] != "/" && args[1] != "root" {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid node id %q", args[1])
		}
		parent = &id
	}
	if err := s.store.UpdateNodeParent(n.ID, parent); err != nil {
		if errors.Is(err, db.ErrCycle) || errors.Is(err, db.ErrParentNotFound) {
			return errors.New(s.tr.T("move_error", err))
		}
		return err
	}
	fmt.Fprintln(s.out, s.tr.T("moved", n.ID))
	return nil
}

func (s *Shell) handleShow(args []string) error {
	n, err := s.target(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "# %s\n", n.Title)
	if n.Content == "" {
		return nil
	}
	body := n.Content
	if s.render != nil {
		rendered, err := s.render.Render(n.Content)
		if err != nil {
			s.log.Warn("rendering content", zap.Int64("id", n.ID), zap.Error(err))
		} else {
			body = rendered
		}
	}
	fmt.Fprintln(s.out, strings.TrimRight(body, "\n"))
	return nil
}

func (s *Shell) handleRename(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: rename <id> <title>")
	}
	n, err := s.target(args[:1])
	if err != nil {
		return err
	}
	title := strings.Join(args[1:], " ")
	if err := s.store.UpdateNode(n.ID, db.NodeUpdate{Title: &title}); err != nil {
		if errors.Is(err, db.ErrEmptyTitle) {
			return errors.New(s.tr.T("empty_title", n.Title))
		}
		return err
	}
	fmt.Fprintln(s.out, s.tr.T("note_saved"))
	return nil
}

func (s *Shell) handleWrite(args []string, appendText bool) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: write|append <id> <text>")
	}
	n, err := s.target(args[:1])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")
	if appendText && n.Content != "" {
		text = n.Content + "\n" + text
	}
	if err := s.store.UpdateNode(n.ID, db.NodeUpdate{Content: &text}); err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.tr.T("note_saved"))
	return nil
}

func (s *Shell) handleFold(args []string, collapsed bool) error {
	n, err := s.target(args)
	if err != nil {
		return err
	}
	return s.store.SetCollapsed(n.ID, collapsed)
}

func (s *Shell) handleTree(args []string) error {
	all := false
	for _, a := range args {
		if a == "-a" || a == "--all" {
			all = true
		}
	}
	items, err := forest.LoadFrom(s.store, s.current)
	if err != nil {
		return err
	}
	if len(items) == 0 && s.current == nil {
		fmt.Fprintln(s.out, s.tr.T("empty_tree"))
		return nil
	}
	return forest.Fprint(s.out, items, all)
}

func (s *Shell) handleLang(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "%s: %s (%s)\n", s.tr.T("language"), s.tr.Lang(), strings.Join(i18n.Languages(), ", "))
		return nil
	}
	lang := args[0]
	if !i18n.Supported(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}
	if err := s.store.SetSetting(i18n.SettingKey, lang); err != nil {
		return err
	}
	s.tr = i18n.New(lang)
	return nil
}

func (s *Shell) handleHelp(args []string) error {
	if len(args) > 0 {
		help, ok := commandHelp[args[0]]
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintln(s.out, help)
		return nil
	}
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(s.out, "Available commands:")
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", name)
	}
	fmt.Fprintln(s.out, "\nUse 'help <command>' for more information about a specific command.")
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

var commandHelp = map[string]string{
	"ls":       "Syntax: ls [id]\nLists the children of the current node (or of id).",
	"cd":       "Syntax: cd <id|..|/>\nSelects a node; '..' goes to the parent, '/' to the root level.",
	"pwd":      "Syntax: pwd\nPrints the path of the current node.",
	"add":      "Syntax: add <title>\nCreates a child of the current node.",
	"rm":       "Syntax: rm [id]\nDeletes a node and all its descendants after confirmation.",
	"mv":       "Syntax: mv <id> <parent-id|/>\nMoves a node under another parent, or to the root level.",
	"show":     "Syntax: show [id]\nRenders the node content.",
	"rename":   "Syntax: rename <id> <title>\nChanges a node title.",
	"write":    "Syntax: write <id> <text>\nReplaces a node content.",
	"append":   "Syntax: append <id> <text>\nAppends a line to a node content.",
	"collapse": "Syntax: collapse [id]\nHides the children of a node in tree views.",
	"expand":   "Syntax: expand [id]\nShows the children of a node in tree views.",
	"tree":     "Syntax: tree [-a]\nPrints the tree below the current node; -a ignores collapse state.",
	"lang":     "Syntax: lang [code]\nShows or sets the interface language.",
	"help":     "Syntax: help [command]\nLists commands or describes one.",
	"exit":     "Syntax: exit\nLeaves the shell.",
}
