// Package l10n is the resource bundle: localized string lookup by key and
// the text direction of the active locale.
package l10n

import (
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLocale backs every key missing from the active locale.
const DefaultLocale = "en"

// Direction is the reading direction of a locale.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// rtlScripts are the scripts written right to left among those x/text can
// infer for a language tag.
var rtlScripts = map[string]bool{
	"Arab": true,
	"Hebr": true,
	"Thaa": true,
	"Syrc": true,
	"Nkoo": true,
	"Adlm": true,
	"Rohg": true,
}

// Bundle holds the string tables for one active locale.
type Bundle struct {
	locale    string
	direction Direction
	strings   map[string]string
	fallback  map[string]string
}

// New loads the bundle for locale (BCP 47, e.g. "de-AT" or "he"). An empty
// or unknown locale falls back to DefaultLocale for the strings; the text
// direction is still derived from the requested tag.
func New(locale string) (*Bundle, error) {
	fallback, err := loadTable(DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("loading default locale: %w", err)
	}

	b := &Bundle{
		locale:   DefaultLocale,
		fallback: fallback,
		strings:  fallback,
	}
	if locale == "" {
		return b, nil
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return b, nil
	}
	b.direction = directionOf(tag)

	for _, candidate := range candidates(tag) {
		table, err := loadTable(candidate)
		if err != nil {
			continue
		}
		b.locale = candidate
		b.strings = table
		break
	}
	return b, nil
}

// Locale returns the locale whose table is active.
func (b *Bundle) Locale() string { return b.locale }

// TextDirection returns the direction of the requested locale.
func (b *Bundle) TextDirection() Direction { return b.direction }

// String returns the localized string for key, falling back to the default
// locale and finally to the key itself.
func (b *Bundle) String(key string) string {
	if s, ok := b.strings[key]; ok {
		return s
	}
	if s, ok := b.fallback[key]; ok {
		return s
	}
	return key
}

// StringF returns String(key) with $1, $2, ... replaced by args.
func (b *Bundle) StringF(key string, args ...string) string {
	s := b.String(key)
	// Highest index first so $1 does not eat the prefix of $10.
	for i := len(args); i >= 1; i-- {
		s = strings.ReplaceAll(s, "$"+strconv.Itoa(i), args[i-1])
	}
	return s
}

func directionOf(tag language.Tag) Direction {
	script, _ := tag.Script()
	if rtlScripts[script.String()] {
		return RightToLeft
	}
	return LeftToRight
}

// candidates lists table names for tag from most to least specific.
func candidates(tag language.Tag) []string {
	var out []string
	if s := tag.String(); s != "" {
		out = append(out, s)
	}
	base, _ := tag.Base()
	if b := base.String(); b != "" && b != tag.String() {
		out = append(out, b)
	}
	return out
}

func loadTable(name string) (map[string]string, error) {
	data, err := localeFS.ReadFile(path.Join("locales", name+".yaml"))
	if err != nil {
		return nil, err
	}
	table := make(map[string]string)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing locale %s: %w", name, err)
	}
	return table, nil
}
