package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// View names a page the login routes can show.
type View string

const (
	ViewLogin     View = "login"
	ViewLoggedOut View = "logged_out"
)

// ViewData is everything a view gets. Error is always one of the fixed
// lockout messages, never a raw error.
type ViewData struct {
	Title  string
	Error  string
	Login  string
	Action string
}

// Renderer turns a view into a response. Deployments that want their own
// pages supply their own Renderer.
type Renderer interface {
	Render(c *gin.Context, status int, view View, data ViewData)
}

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateRenderer renders the built-in HTML pages.
type TemplateRenderer struct {
	tmpl *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

func (r *TemplateRenderer) Render(c *gin.Context, status int, view View, data ViewData) {
	c.Render(status, render.HTML{Template: r.tmpl, Name: string(view), Data: data})
}
