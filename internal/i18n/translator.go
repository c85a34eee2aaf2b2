// Package i18n looks up user-facing strings in per-language translation
// files.
//
// A translation directory holds one flat key/value file per language, named
// after the language code: EN.json, CH.yaml, JP.yml and so on.
package i18n

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/beiklive/mytoolmodule/internal/errors"
)

// Language identifies a supported translation.
type Language int

const (
	EN Language = iota
	CH
	JP
)

var languageCodes = []string{"EN", "CH", "JP"}

// String returns the language code, which is also the translation file name.
func (l Language) String() string {
	if l < 0 || int(l) >= len(languageCodes) {
		return "UNKNOWN"
	}
	return languageCodes[l]
}

// Languages returns every supported language.
func Languages() []Language {
	return []Language{EN, CH, JP}
}

// ParseLanguage converts a case-insensitive language code to a Language.
func ParseLanguage(s string) (Language, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if i := slices.Index(languageCodes, code); i >= 0 {
		return Language(i), nil
	}
	return EN, errors.NewTranslationError(s, "", errors.ErrUnsupportedLanguage)
}

// IsSupported reports whether s names a supported language.
func IsSupported(s string) bool {
	_, err := ParseLanguage(s)
	return err == nil
}

// extensions are tried in order when looking for a language file.
var extensions = []string{".json", ".yaml", ".yml"}

// Translator serves strings for one language at a time. It is safe for
// concurrent use.
type Translator struct {
	fs  afero.Fs
	dir string

	mu      sync.RWMutex
	lang    Language
	loaded  bool
	source  string
	entries map[string]string
}

// New creates a Translator reading files from dir. No language is loaded
// until SetLanguage is called.
func New(fs afero.Fs, dir string) *Translator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Translator{fs: fs, dir: dir}
}

// SetLanguage loads the translation file for lang. On failure the
// previously loaded language stays active.
func (t *Translator) SetLanguage(lang Language) error {
	entries, source, err := t.load(lang)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = lang
	t.loaded = true
	t.source = source
	t.entries = entries
	return nil
}

func (t *Translator) load(lang Language) (map[string]string, string, error) {
	if lang.String() == "UNKNOWN" {
		return nil, "", errors.NewTranslationError(lang.String(), "", errors.ErrUnsupportedLanguage)
	}

	for _, ext := range extensions {
		path := filepath.Join(t.dir, lang.String()+ext)
		exists, err := afero.Exists(t.fs, path)
		if err != nil || !exists {
			continue
		}
		data, err := afero.ReadFile(t.fs, path)
		if err != nil {
			return nil, "", errors.NewTranslationError(lang.String(), "", errors.ErrLanguageFile).WithCause(err)
		}
		entries := make(map[string]string)
		if ext == ".json" {
			err = json.Unmarshal(data, &entries)
		} else {
			err = yaml.Unmarshal(data, &entries)
		}
		if err != nil {
			return nil, "", errors.NewTranslationError(lang.String(), "", errors.ErrLanguageFile).
				WithCause(fmt.Errorf("parse %s: %w", path, err))
		}
		return entries, path, nil
	}

	missing := fmt.Errorf("no %s.{json,yaml,yml} in %s", lang, t.dir)
	return nil, "", errors.NewTranslationError(lang.String(), "", errors.ErrLanguageFile).WithCause(missing)
}

// Language returns the active language and whether one has been loaded.
func (t *Translator) Language() (Language, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang, t.loaded
}

// Source returns the file the active language was loaded from.
func (t *Translator) Source() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.source
}

// T returns the translation of key in the active language.
func (t *Translator) T(key string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.loaded {
		return "", errors.NewTranslationError("", key, errors.ErrNoLanguage)
	}
	value, ok := t.entries[key]
	if !ok {
		return "", errors.NewTranslationError(t.lang.String(), key, errors.ErrKeyNotFound)
	}
	return value, nil
}

// TOr returns the translation of key, or fallback if it has none.
func (t *Translator) TOr(key, fallback string) string {
	value, err := t.T(key)
	if err != nil {
		return fallback
	}
	return value
}

// Keys returns the keys of the active language in sorted order.
func (t *Translator) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
