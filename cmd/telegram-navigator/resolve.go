package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
	"github.com/codex-k8s/telegram-navigator/internal/lang"
)

type resolveFlags struct {
	status      string
	lang        string
	defaultLang string
	dataDir     string
	botUsername string
	values      map[string]string
	ranks       map[string]int
	existing    int
	contiguous  bool
}

var resolveOpts resolveFlags

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Render a status offline and print it as JSON",
	Long: `Loads the trees, resolves one status the way the bot would and prints the
resulting text and keyboard. No Telegram token is needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runResolve(cmd.OutOrStdout(), resolveOpts)
	},
}

func init() {
	flags := resolveCmd.Flags()
	flags.StringVar(&resolveOpts.status, "status", "", "Status to render, e.g. home@main")
	flags.StringVar(&resolveOpts.lang, "lang", "", "Requested language")
	flags.StringVar(&resolveOpts.defaultLang, "default-lang", "en", "Language used when the requested one has no tree")
	flags.StringVar(&resolveOpts.dataDir, "data-dir", "", "Directory with language/ and callback/ trees (bundled trees when empty)")
	flags.StringVar(&resolveOpts.botUsername, "bot-username", "", "Value for the bot_username placeholder")
	flags.StringToStringVar(&resolveOpts.values, "set", nil, "Placeholder values for text, labels and payloads (key=value)")
	flags.StringToIntVar(&resolveOpts.ranks, "rank", nil, "Rank levels filling the placeholder of the same name (list=level)")
	flags.IntVar(&resolveOpts.existing, "existing-rows", 0, "Rows already on the surface")
	flags.BoolVar(&resolveOpts.contiguous, "contiguous", false, "Append rows directly after existing ones")
	_ = resolveCmd.MarkFlagRequired("status")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(out io.Writer, opts resolveFlags) error {
	if opts.existing < 0 || opts.existing > callmess.MaxExistingRows {
		return fmt.Errorf("--existing-rows must be between 0 and %d", callmess.MaxExistingRows)
	}
	catalog, err := openCatalog(opts.dataDir)
	if err != nil {
		return err
	}

	placement := callmess.RowGapAfterExisting
	if opts.contiguous {
		placement = callmess.RowContiguous
	}
	var base *callmess.Keyboard
	if opts.existing > 0 {
		base = &callmess.Keyboard{Rows: make([]callmess.Row, opts.existing)}
		for i := range base.Rows {
			base.Rows[i].Position = i
		}
	}

	res, err := callmess.Resolve(catalog, callmess.Request{
		Status:      opts.status,
		Lang:        lang.Normalize(opts.lang),
		DefaultLang: lang.Normalize(opts.defaultLang),
		BotUsername: opts.botUsername,
		Values:      opts.values,
		Labels:      opts.values,
		Data:        opts.values,
		Ranks:       opts.ranks,
		Base:        base,
		Placement:   placement,
	})
	if err != nil {
		return fmt.Errorf("resolve %s: %w", opts.status, err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(res)
}
