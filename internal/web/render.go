package web

import (
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// renderer implements echo.Renderer over one template set per page.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() *renderer {
	base := template.Must(template.New("base").Parse(layoutHTML))
	page := func(body string) *template.Template {
		return template.Must(template.Must(base.Clone()).Parse(body))
	}
	return &renderer{pages: map[string]*template.Template{
		pageForm: page(formHTML),
		pageList: page(listHTML),
	}}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}
