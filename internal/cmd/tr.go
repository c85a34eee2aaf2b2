package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beiklive/mytoolmodule/internal/config"
	"github.com/beiklive/mytoolmodule/internal/i18n"
	"github.com/beiklive/mytoolmodule/internal/logging"
)

var trCmd = &cobra.Command{
	Use:   "tr [key...]",
	Short: "Print translations for keys in one or all languages",
	Long: `Load translation files and print the value of each key.

Without keys, every key of the language is printed. Use --lang all to walk
EN, CH and JP in turn.

Examples:
  mytool tr Language WelcomeMessage --lang all
  mytool tr --lang JP --dir ./res/translate`,
	RunE: runTr,
}

var (
	trLang string
	trDir  string
)

func init() {
	rootCmd.AddCommand(trCmd)

	trCmd.Flags().StringVar(&trLang, "lang", "", "Language code (EN, CH, JP) or 'all' (default: i18n.language from config)")
	trCmd.Flags().StringVar(&trDir, "dir", "", "Directory of translation files (default: i18n.dir from config)")
}

func runTr(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	dir := trDir
	if dir == "" {
		dir = cfg.I18n.Dir
	}
	code := trLang
	if code == "" {
		code = cfg.I18n.Language
	}

	var langs []i18n.Language
	if strings.EqualFold(code, "all") {
		langs = i18n.Languages()
	} else {
		lang, err := i18n.ParseLanguage(code)
		if err != nil {
			return err
		}
		langs = []i18n.Language{lang}
	}

	tr := i18n.New(appFs, dir)
	out := cmd.OutOrStdout()
	failed := 0
	for _, lang := range langs {
		if err := tr.SetLanguage(lang); err != nil {
			// With several languages a missing file only skips that one.
			if len(langs) == 1 {
				return err
			}
			logging.Error("{}", err)
			failed++
			continue
		}
		logging.Debug("Loaded {} from {}", lang, tr.Source())
		printTranslations(out, tr, lang, args)
	}
	if failed == len(langs) {
		return fmt.Errorf("no translation file could be loaded from %s", dir)
	}
	return nil
}

func printTranslations(out io.Writer, tr *i18n.Translator, lang i18n.Language, keys []string) {
	if len(keys) == 0 {
		keys = tr.Keys()
	}
	fmt.Fprintf(out, "[%s]\n", lang)
	for _, key := range keys {
		value, err := tr.T(key)
		if err != nil {
			logging.Warning("{}", err)
			value = "<missing>"
		}
		fmt.Fprintf(out, "  %s: %s\n", key, value)
	}
}
