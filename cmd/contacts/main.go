package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize/english"
	"github.com/mfenderov/contacts/internal/config"
	"github.com/mfenderov/contacts/internal/contact"
	"github.com/mfenderov/contacts/internal/render"
	"github.com/mfenderov/contacts/internal/storage"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	logger  = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// options holds the flag values shared by every command.
type options struct {
	configPath string
	file       string
	db         string

	format string
	fromDB bool
	hide   []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "contacts <pattern>...",
		Short: "Look up people in your contacts file",
		Long: titleStyle.Render("contacts") + " - search a plain-text contacts file\n\n" +
			"Every pattern must appear (case-insensitively) in a contact's name,\n" +
			"one of its values, or one of its notes.\n\n" +
			"A first word that names a subcommand (search, check, export, stats,\n" +
			"version) runs that command. Use \"contacts search <word>\" to look\n" +
			"such a word up instead.",
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigFile, "path to config file")
	rootCmd.PersistentFlags().StringVar(&opts.file, "file", config.DefaultContactsFile, "path to contacts file (env "+config.EnvContactsFile+")")
	rootCmd.PersistentFlags().StringVar(&opts.db, "db", config.DefaultDBFile, "path to snapshot database (env "+config.EnvDBFile+")")
	addSearchFlags(rootCmd, opts)

	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func addSearchFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.format, "format", "default", "output format: default, json")
	cmd.Flags().BoolVar(&opts.fromDB, "from-db", false, "search the exported snapshot instead of the contacts file")
	cmd.Flags().StringSliceVar(&opts.hide, "hide", nil, "additional keys to leave out of the listing")
}

// resolveConfig layers explicitly set flags over the config file and environment.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("file") {
		cfg.File = opts.file
	}
	if cmd.Flags().Changed("db") {
		cfg.DB = opts.db
	}

	if cfg.File, err = config.ExpandPath(cfg.File); err != nil {
		return nil, err
	}
	if cfg.DB, err = config.ExpandPath(cfg.DB); err != nil {
		return nil, err
	}

	cfg.HiddenKeys = append(cfg.HiddenKeys, opts.hide...)
	return cfg, nil
}

// loadBook loads the contacts file and logs every dropped line.
func loadBook(path string) (*contact.Book, error) {
	book, err := contact.Load(path)
	if err != nil {
		return nil, err
	}

	for _, d := range book.Diagnostics {
		logger.Warn("Skipped line -- review file format",
			"line", d.Line,
			"reason", d.Err,
			"text", d.Text)
	}
	return book, nil
}

// openSnapshot opens the exported snapshot for reading without creating it.
func openSnapshot(cmd *cobra.Command, path string) (*storage.Store, error) {
	store, err := storage.OpenSnapshot(cmd.Context(), path)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil, fmt.Errorf("%w, run `contacts export` first", err)
	}
	return store, err
}

func getStore(path string) (*storage.Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return storage.NewStore(path)
}

// --- Search ---

func newSearchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <pattern>...",
		Short: "Search contacts (same as running contacts with patterns)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args)
		},
	}
	addSearchFlags(cmd, opts)
	return cmd
}

func runSearch(cmd *cobra.Command, opts *options, patterns []string) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	var contacts []contact.Contact
	if opts.fromDB {
		store, err := openSnapshot(cmd, cfg.DB)
		if err != nil {
			return err
		}
		defer store.Close()

		if contacts, err = store.ListContacts(cmd.Context()); err != nil {
			return err
		}
	} else {
		book, err := loadBook(cfg.File)
		if err != nil {
			return err
		}
		contacts = book.Contacts
	}

	filtered := contact.Filter(contacts, patterns)

	switch opts.format {
	case "json":
		return render.RenderJSON(cmd.OutOrStdout(), filtered)
	case "default":
		return render.New(cmd.OutOrStdout(), cfg.HiddenKeys).Render(filtered)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

// --- Check ---

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report lines of the contacts file that would be skipped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			book, err := contact.Load(cfg.File)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(book.Diagnostics) == 0 {
				fmt.Fprintln(out, successStyle.Render("No problems found")+" "+
					dimStyle.Render("("+english.Plural(len(book.Contacts), "contact", "")+")"))
				return nil
			}

			for _, d := range book.Diagnostics {
				fmt.Fprintln(out, warnStyle.Render(d.Error()))
			}
			return fmt.Errorf("%s in %s", english.Plural(len(book.Diagnostics), "problem", ""), cfg.File)
		},
	}
}

// --- Export ---

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the contacts file to the SQLite snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			book, err := loadBook(cfg.File)
			if err != nil {
				return err
			}

			store, err := getStore(cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ReplaceContacts(cmd.Context(), cfg.File, book.Contacts); err != nil {
				return err
			}

			logger.Info("Exported contacts",
				"count", len(book.Contacts),
				"db", dimStyle.Render(cfg.DB))
			return nil
		},
	}
}

// --- Stats ---

func newStatsCmd(opts *options) *cobra.Command {
	var fromDB bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show contact statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			var (
				stats   storage.Stats
				version int64
				meta    *storage.Meta
			)
			source := cfg.File

			if fromDB {
				store, err := openSnapshot(cmd, cfg.DB)
				if err != nil {
					return err
				}
				defer store.Close()

				if stats, err = store.Stats(cmd.Context()); err != nil {
					return err
				}
				if version, err = store.SchemaVersion(cmd.Context()); err != nil {
					return err
				}
				if meta, err = store.Meta(cmd.Context()); err != nil {
					return err
				}
				source = cfg.DB
			} else {
				book, err := loadBook(cfg.File)
				if err != nil {
					return err
				}
				stats = countBook(book)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Contact Statistics"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  "+dimStyle.Render("Source:")+"      "+source)
			fmt.Fprintln(out, "  "+dimStyle.Render("Contacts:")+"    "+successStyle.Render(itoa(stats.Contacts)))
			fmt.Fprintln(out, "  "+dimStyle.Render("Attributes:")+"  "+successStyle.Render(itoa(stats.Attributes)))
			fmt.Fprintln(out, "  "+dimStyle.Render("Notes:")+"       "+successStyle.Render(itoa(stats.Notes)))
			if fromDB {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "  "+dimStyle.Render("Schema:")+"      v"+strconv.FormatInt(version, 10))
				fmt.Fprintln(out, "  "+dimStyle.Render("Exported:")+"    "+meta.ExportedAt.Format(time.DateTime)+" from "+meta.Source)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromDB, "from-db", false, "count the exported snapshot instead of the contacts file")
	return cmd
}

func countBook(book *contact.Book) storage.Stats {
	stats := storage.Stats{Contacts: len(book.Contacts)}
	for _, c := range book.Contacts {
		stats.Attributes += len(c.Attributes)
		stats.Notes += len(c.Notes)
	}
	return stats
}

// --- Version ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("contacts")+" "+dimStyle.Render(Version))
		},
	}
}

// --- Helpers ---

func itoa(i int) string {
	return strconv.Itoa(i)
}
