package render

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/gin-gonic/gin/render"
)

// Page template names.
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageMaterials = "materials"
	PageError     = "error"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates holds one template set per page. Each set is cloned from the
// layout so that every page can define its own "content" block.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses the embedded layout and page templates.
func LoadTemplates() (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("sub fs: %w", err)
	}

	base, err := template.New("").ParseFS(sub, "base.html")
	if err != nil {
		return nil, fmt.Errorf("parse base: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{PageLogin, PageDashboard, PageMaterials, PageError} {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", name, err)
		}
		if _, err := t.ParseFS(sub, name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Templates{pages: pages}, nil
}

// Instance implements gin's render.HTMLRender. Unknown page names fall back
// to the error page.
func (t *Templates) Instance(name string, data interface{}) render.Render {
	tmpl, ok := t.pages[name]
	if !ok {
		tmpl = t.pages[PageError]
	}
	return render.HTML{Template: tmpl, Name: "base", Data: data}
}

//go:embed static
var staticFS embed.FS

// Static returns the embedded stylesheet directory.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
