package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/mdpress/internal/config"
	"github.com/pbaille/mdpress/internal/domain"
	"github.com/pbaille/mdpress/internal/markdown"
	"github.com/pbaille/mdpress/internal/output"
	"github.com/pbaille/mdpress/internal/publish"
	"github.com/pbaille/mdpress/internal/site"
	"github.com/pbaille/mdpress/internal/store"
	"github.com/pbaille/mdpress/internal/termcache"
	"github.com/pbaille/mdpress/internal/wordpress"
)

var (
	version = "dev"

	cfgFile   string
	verbose   bool
	quiet     bool
	colorMode string
	jsonOut   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdpress",
		Short: "Publish Markdown articles to a WordPress site",
		Long: `mdpress publishes locally written Markdown articles to WordPress over XML-RPC
and keeps a local cache of the site's categories and tags.

Example usage:
  mdpress new draft hello          # publish draft/hello.md
  mdpress update post 10-12        # push post/10.md .. post/12.md
  mdpress new term post_tag go Go  # create a tag
  mdpress show term category       # list cached categories`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .mdpress.yaml)")
	flags.StringP("site", "s", "", "site url, /xmlrpc.php is appended unless present")
	flags.StringP("user", "u", "", "site user")
	flags.StringP("password", "p", "", "site password")
	flags.Duration("timeout", 0, "per call timeout, overrides site.timeout")
	flags.String("root", "", "directory holding the draft, post and page folders")
	flags.String("cache", "", "term cache file (.db, .yaml, .toml or .json)")
	flags.IntP("number", "n", 0, "number of posts to list")
	flags.String("orderby", "", "field to order listings by")
	flags.String("order", "", "listing order, ASC or DESC")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging and content previews")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only print errors")
	flags.StringVar(&colorMode, "color", "auto", "color output: auto, always or never")
	flags.BoolVar(&jsonOut, "json", false, "print fetched entities as JSON")

	rootCmd.AddCommand(actionCmd(publish.ActionNew, "Publish a draft or create a term",
		"new draft <id> | new term <taxonomy> <slug> [name [description]]"))
	rootCmd.AddCommand(actionCmd(publish.ActionUpdate, "Push local posts, pages or drafts, or edit a term",
		"update {post|page|draft} <id|A-B>... | update term <taxonomy> [slug name [description]]"))
	rootCmd.AddCommand(actionCmd(publish.ActionShow, "Show remote posts, pages, options, taxonomies, terms or local drafts",
		"show {post|page|draft|option|tax|term} [query...]"))
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorPrinter(os.Stderr).Report(err)
		stop()
		os.Exit(1)
	}
}

// errorPrinter reports errors that abort the command, honoring --color even
// when the configuration never loaded
func errorPrinter(errOut io.Writer) *output.Printer {
	mode, err := output.ParseColorMode(colorMode)
	if err != nil {
		mode = output.ColorAuto
	}
	return output.NewPrinterWithWriters(os.Stdout, errOut, output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: true,
	})
}

// env is everything a command needs, built once per invocation
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	printer   *output.Printer
	store     store.Store
	publisher *publish.Publisher
	client    *wordpress.Client
}

func setup(cmd *cobra.Command) (*env, error) {
	mode, err := output.ParseColorMode(colorMode)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	e := &env{
		cfg:    cfg,
		logger: newLogger(cfg.Logging.Level),
		printer: output.NewPrinter(output.PrinterOptions{
			ColorMode:    mode,
			ConfigColors: cfg.Output.Colors,
			Quiet:        quiet,
			Verbose:      verbose,
		}),
	}
	e.logger.Debug("configuration loaded",
		"site", cfg.Site.URL,
		"root", cfg.Paths.Root,
		"cache", cfg.Paths.CachePath(),
	)

	e.publisher = publish.New(publish.Options{
		Connect:   e.connect,
		OpenCache: e.openCache,
		Layout:    site.New(cfg.Paths),
		Renderer:  markdown.NewRenderer(),
		Printer:   e.printer,
		Logger:    e.logger,
		Filter: domain.PostFilter{
			Number:  cfg.Show.Number,
			OrderBy: cfg.Show.OrderBy,
			Order:   cfg.Show.Order,
		},
		JSON: jsonOut,
	})
	return e, nil
}

// connect builds the XML-RPC client the first time a workflow needs the site
func (e *env) connect() (publish.Remote, error) {
	if err := e.cfg.Site.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := e.cfg.Site.Endpoint()
	if err != nil {
		return nil, err
	}
	client, err := wordpress.New(wordpress.Options{
		Endpoint: endpoint,
		User:     e.cfg.Site.User,
		Password: e.cfg.Site.Password,
		BlogID:   e.cfg.Site.BlogID,
		Timeout:  e.cfg.Site.Timeout,
		Logger:   e.logger,
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("connected", "endpoint", endpoint, "user", e.cfg.Site.User)
	e.client = client
	return client, nil
}

// openCache opens the term store the first time a workflow needs it, so
// commands that never touch terms leave no cache file behind
func (e *env) openCache() (*termcache.Cache, error) {
	s, err := store.Open(e.cfg.Paths.CachePath())
	if err != nil {
		return nil, err
	}
	cache, err := termcache.Load(s, e.logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	e.store = s
	return cache, nil
}

func (e *env) close() {
	if e.client != nil {
		e.client.Close()
	}
	if e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing term cache", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	if verbose {
		l = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// run executes one command. Workflow errors are reported and swallowed;
// usage and configuration errors are returned so the process exits non-zero.
func run(cmd *cobra.Command, c publish.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	err = e.publisher.Run(cmd.Context(), c)
	if err == nil {
		return nil
	}
	if errors.Is(err, publish.ErrUsage) || errors.Is(err, domain.ErrConfig) {
		return err
	}
	e.printer.Report(err)
	return nil
}

func actionCmd(action publish.Action, short, usage string) *cobra.Command {
	kinds := publish.Kinds(action)
	valid := make([]string, len(kinds))
	for i, k := range kinds {
		valid[i] = string(k)
	}

	return &cobra.Command{
		Use:       string(action) + " {" + strings.Join(valid, "|") + "} [query...]",
		Short:     short,
		Example:   "  mdpress " + usage,
		ValidArgs: valid,
		Args:      cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, publish.Command{
				Action: action,
				Kind:   publish.Kind(args[0]),
				Query:  args[1:],
			})
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [type] [query...]",
		Short: "Reserved; deleting remote content is not supported",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := publish.Command{Action: publish.ActionDelete}
			if len(args) > 0 {
				c.Kind = publish.Kind(args[0])
				c.Query = args[1:]
			}
			return run(cmd, c)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mdpress version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mdpress", version)
		},
	}
}
