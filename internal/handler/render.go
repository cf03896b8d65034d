package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"skillswap/internal/app/identity"
	"skillswap/internal/pkg/logx"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// pages maps a page name to its parsed template set (layout plus the page's content block).
var pages = mustParsePages("landing", "match", "chat", "sessions", "dashboard", "admin")

func mustParsePages(names ...string) map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(names))
	for _, name := range names {
		parsed[name] = template.Must(
			template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"),
		)
	}
	return parsed
}

type navItem struct {
	Name  string
	Label string
	Path  string
}

var shellNav = []navItem{
	{Name: "match", Label: "Match", Path: "/app/match"},
	{Name: "chat", Label: "Chat", Path: "/app/chat"},
	{Name: "sessions", Label: "Sessions", Path: "/app/sessions"},
	{Name: "dashboard", Label: "Dashboard", Path: "/app/dashboard"},
	{Name: "admin", Label: "Admin", Path: "/app/admin"},
}

// pageData is what every template receives. Page carries the page-specific view state.
type pageData struct {
	Title  string
	Active string
	Shell  bool
	Nav    []navItem
	User   *identity.Identity
	Page   any
}

// render executes the named page into a buffer so a template error never leaves a half-written response.
func render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	tmpl, ok := pages[name]
	if !ok {
		logx.Error(fmt.Errorf("template %q is not registered", name), "Unknown page template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data.Shell {
		data.Active = name
		data.Nav = shellNav
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logx.Error(err, "Failed to render page", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// shellPage builds the data of a protected page for the signed-in user.
func shellPage(deps *AppDeps, title string, page any) pageData {
	data := pageData{Title: title, Shell: true, Page: page}
	if current, ok := deps.Identity.Current(); ok {
		data.User = &current
	}
	return data
}

// seeOther redirects after a form post so a reload does not repeat the action.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
