package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notenodes/internal/config"
	"notenodes/internal/db"
	"notenodes/internal/i18n"
	"notenodes/internal/logging"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "notenodes",
	Short:         "Hierarchical Markdown notes in a local SQLite store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		l, err := logging.New(level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the notes database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// OpenDatabase discovers, opens and initializes the database
func OpenDatabase() (*db.DB, error) {
	path, err := config.DiscoverDB(dbPath, cfg)
	if err != nil {
		return nil, err
	}
	d, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	d.SetLogger(logger.Named("store"))
	d.StrictParents = cfg != nil && cfg.Database.StrictParents
	if err := d.Initialize(); err != nil {
		d.Close()
		return nil, fmt.Errorf("initializing database %s: %w", path, err)
	}
	logger.Debug("database opened", zap.String("path", path))
	return d, nil
}

// translator picks the language from the settings table, then the config.
func translator(d *db.DB) *i18n.Translator {
	def := i18n.Fallback
	if cfg != nil && cfg.Language != "" {
		def = cfg.Language
	}
	lang, err := d.GetSetting(i18n.SettingKey, def)
	if err != nil {
		logger.Warn("reading language setting", zap.Error(err))
		lang = def
	}
	return i18n.New(lang)
}

// userError carries a localized message while keeping the cause for errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// ResolveNode finds a node by numeric ID, exact title, or full-text search.
func ResolveNode(d *db.DB, tr *i18n.Translator, reference string) (*db.Node, error) {
	// 1. Numeric ID
	if id, err := strconv.ParseInt(reference, 10, 64); err == nil {
		node, err := d.GetNode(id)
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, &userError{msg: tr.T("not_found", id)}
		}
		return node, nil
	}

	// 2. Exact title (case-insensitive)
	all, err := d.AllNodes()
	if err != nil {
		return nil, err
	}
	var exact []db.Node
	for _, n := range all {
		if strings.EqualFold(n.Title, reference) {
			exact = append(exact, n)
		}
	}
	if len(exact) == 1 {
		return &exact[0], nil
	}
	if len(exact) > 1 {
		return nil, ambiguous(reference, exact)
	}

	// 3. Full-text search
	matches, err := d.SearchNodes(reference, 10)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		return nil, fmt.Errorf("node not found: %s", reference)
	default:
		return nil, ambiguous(reference, matches)
	}
}

func ambiguous(reference string, matches []db.Node) error {
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("  %d %s", m.ID, truncTitle(m.Title, 50))
	}
	return fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a node ID instead.",
		reference, len(matches), strings.Join(lines, "\n"))
}

// parseParent resolves a parent reference; "", "root", "/" and "-" mean the root level.
func parseParent(d *db.DB, tr *i18n.Translator, reference string) (*int64, error) {
	switch reference {
	case "", "root", "/", "-":
		return nil, nil
	}
	if id, err := strconv.ParseInt(reference, 10, 64); err == nil {
		// Unknown numeric parents are passed through; the store decides.
		return &id, nil
	}
	n, err := ResolveNode(d, tr, reference)
	if err != nil {
		return nil, err
	}
	return &n.ID, nil
}

// readContent returns inline text, or the contents of path ("-" for stdin).
func readContent(cmd *cobra.Command, inline, path string) (string, error) {
	if path == "" {
		return inline, nil
	}
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}
