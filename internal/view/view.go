// Package view renders the route views. Templates live under a base directory
// with a shared layout.html; parsed templates are cached per name. The
// renderer is an explicit object constructed at startup (no package globals)
// and resettable for tests.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/diewo77/go-courses/internal/i18n"
)

type Renderer struct {
	baseDir string
	catalog *i18n.Catalog
	dev     bool

	mu    sync.RWMutex
	cache map[string]*template.Template
}

func New(baseDir string, catalog *i18n.Catalog, dev bool) *Renderer {
	return &Renderer{
		baseDir: baseDir,
		catalog: catalog,
		dev:     dev,
		cache:   map[string]*template.Template{},
	}
}

// Reset clears the template cache. Test support.
func (v *Renderer) Reset() {
	v.mu.Lock()
	v.cache = map[string]*template.Template{}
	v.mu.Unlock()
}

func (v *Renderer) funcs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":    func(code string) string { return v.catalog.T(lang, code) },
		"tf": func(code string, vars map[string]any) string {
			flat := make(map[string]string, len(vars))
			for k, val := range vars {
				flat[k] = fmt.Sprint(val)
			}
			return v.catalog.Tf(lang, code, flat)
		},
		"lang": func() string { return lang },
		"year": func() int { return time.Now().Year() },
		"price": func(p float64) string {
			if p <= 0 {
				return v.catalog.T(lang, "course.free")
			}
			return fmt.Sprintf("$%.2f", p)
		},
		// dict passes key/value pairs to sub-templates.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// Render executes templates/<name> inside layout.html with the shared funcs.
// Common defaults (Year, Lang) are injected when the caller did not set them.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	lang := i18n.LangFromContext(r.Context())
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	if _, ok := data["Lang"]; !ok {
		data["Lang"] = lang
	}

	key := lang + ":" + name
	if !v.dev {
		v.mu.RLock()
		t, ok := v.cache[key]
		v.mu.RUnlock()
		if ok && t != nil {
			return t.Execute(w, data)
		}
	}

	mainPath := filepath.Join(v.baseDir, name)
	if _, err := os.Stat(mainPath); err != nil {
		return err
	}
	layoutPath := filepath.Join(v.baseDir, "layout.html")
	files := []string{mainPath}
	root := name
	if fi, err := os.Stat(layoutPath); err == nil && !fi.IsDir() {
		files = []string{layoutPath, mainPath}
		root = "layout.html"
	}
	t, err := template.New(root).Funcs(v.funcs(lang)).ParseFiles(files...)
	if err != nil {
		return err
	}
	if !v.dev {
		v.mu.Lock()
		v.cache[key] = t
		v.mu.Unlock()
	}
	return t.Execute(w, data)
}
