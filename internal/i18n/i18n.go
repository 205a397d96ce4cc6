// Package i18n loads per-language translation maps from JSON files and
// resolves keys with {variableName} placeholder substitution. Lookup order:
// requested language, default language, then the literal key so a missing
// translation never blanks the UI.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLang is the fallback language.
const DefaultLang = "en"

type ctxKey struct{}

// WithLang stores the resolved language preference in the context.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the language preference, defaulting to DefaultLang.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}

// Catalog holds the loaded translation maps. It is constructed once at startup
// and carried on the app context rather than living in package globals, so
// tests can build throwaway catalogs.
type Catalog struct {
	def   string
	langs map[string]map[string]string
}

// Load reads every <lang>.json in dir. A missing directory yields an empty
// catalog and an error the caller may treat as a degraded-but-usable state.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{def: DefaultLang, langs: map[string]map[string]string{}}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return c, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return c, fmt.Errorf("read locale %s: %w", name, err)
		}
		var m map[string]string
		if err := json.Unmarshal(body, &m); err != nil {
			return c, fmt.Errorf("parse locale %s: %w", name, err)
		}
		c.langs[strings.TrimSuffix(name, ".json")] = m
	}
	return c, nil
}

// Languages returns the loaded language codes.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.langs))
	for lang := range c.langs {
		out = append(out, lang)
	}
	return out
}

// Has reports whether a language is loaded.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.langs[lang]
	return ok
}

// T resolves code in lang, falling back to the default language, then to the
// literal code.
func (c *Catalog) T(lang, code string) string {
	if m, ok := c.langs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if m, ok := c.langs[c.def]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	return code
}

// Tf resolves code and substitutes {name} placeholders from vars.
func (c *Catalog) Tf(lang, code string, vars map[string]string) string {
	s := c.T(lang, code)
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

// DetectLanguage picks a supported language from an Accept-Language header.
func (c *Catalog) DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		base := strings.SplitN(tag, "-", 2)[0]
		if c.Has(base) {
			return base
		}
	}
	return c.def
}
