// Package i18n provides the message catalog behind the controller error
// helpers: translations keyed by language and message template, YAML-loaded
// catalogs, and Accept-Language matching. A missing translation falls back
// to the literal template with placeholders substituted.
package i18n

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultLang is the fallback language code.
const DefaultLang = "en"

// M is a placeholder map for message templates.
type M map[string]any

var (
	ErrEmptyLanguage = errors.New("i18n: language code is empty")
	ErrNoCatalog     = errors.New("i18n: no messages loaded")
)

// Catalog holds translations per language. It is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	// messages maps "lang\x00template" to the translated template.
	messages    map[string]string
	defaultLang string
	languages   []string
}

// Option configures a Catalog during construction.
type Option func(*Catalog) error

// New creates a Catalog with the given options. A catalog that ends up
// with no messages at all fails with ErrNoCatalog.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		messages:    make(map[string]string),
		defaultLang: DefaultLang,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("i18n: failed to apply option: %w", err)
		}
	}
	if len(c.messages) == 0 {
		return nil, ErrNoCatalog
	}
	c.languages = c.buildLanguages()
	return c, nil
}

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(c *Catalog) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		c.defaultLang = lang
		return nil
	}
}

// WithMessages loads translations for one language: message template to
// translated template.
func WithMessages(lang string, messages map[string]string) Option {
	return func(c *Catalog) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		for template, translated := range messages {
			c.messages[key(lang, template)] = translated
		}
		return nil
	}
}

// DefaultLanguage returns the catalog's fallback language.
func (c *Catalog) DefaultLanguage() string {
	return c.defaultLang
}

// Languages returns the languages the catalog carries messages for, with
// the default language first.
func (c *Catalog) Languages() []string {
	return c.languages
}

// T translates a message template into the given language and substitutes
// placeholders. Lookup falls back to the default language, then to the
// literal template.
func (c *Catalog) T(lang, template string, placeholders ...M) string {
	msg, ok := c.messages[key(lang, template)]
	if !ok {
		msg, ok = c.messages[key(c.defaultLang, template)]
	}
	if !ok {
		msg = template
	}
	merged := mergePlaceholders(placeholders)
	return ReplacePlaceholders(msg, merged)
}

// Translator binds a Catalog to one language so callers need not carry the
// language around. Its TranslateMessage signature matches the controller
// TranslateFunc contract.
type Translator struct {
	catalog *Catalog
	lang    string
}

// NewTranslator creates a Translator for the given language; an empty
// language uses the catalog default.
func NewTranslator(catalog *Catalog, lang string) *Translator {
	if catalog == nil {
		panic("i18n: catalog is not provided")
	}
	if lang == "" {
		lang = catalog.defaultLang
	}
	return &Translator{catalog: catalog, lang: lang}
}

// T translates a message template in the translator's language.
func (t *Translator) T(template string, placeholders ...M) string {
	return t.catalog.T(t.lang, template, placeholders...)
}

// TranslateMessage translates with a single placeholder map. The signature
// matches steer's TranslateFunc, allowing direct use as a controller
// translator option.
func (t *Translator) TranslateMessage(template string, placeholders map[string]any) string {
	return t.catalog.T(t.lang, template, M(placeholders))
}

// Language returns the translator's language.
func (t *Translator) Language() string {
	return t.lang
}

// ReplacePlaceholders substitutes {{name}} placeholders in the template
// with values from the map. Unknown placeholders remain unchanged.
func ReplacePlaceholders(template string, placeholders M) string {
	if len(placeholders) == 0 {
		return template
	}
	result := template
	for name, value := range placeholders {
		result = strings.ReplaceAll(result, "{{"+name+"}}", fmt.Sprintf("%v", value))
	}
	return result
}

func mergePlaceholders(maps []M) M {
	switch len(maps) {
	case 0:
		return nil
	case 1:
		return maps[0]
	}
	merged := make(M)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

func key(lang, template string) string {
	return lang + "\x00" + template
}

func (c *Catalog) buildLanguages() []string {
	seen := map[string]bool{c.defaultLang: true}
	langs := []string{c.defaultLang}
	others := make([]string, 0)
	for k := range c.messages {
		lang, _, _ := strings.Cut(k, "\x00")
		if !seen[lang] {
			seen[lang] = true
			others = append(others, lang)
		}
	}
	sort.Strings(others)
	return append(langs, others...)
}
