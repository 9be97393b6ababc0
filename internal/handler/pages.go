package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
)

// pageNames lists the page templates. Each one is parsed together with
// base.html into its own *template.Template, because every page defines a
// block named "content" and one shared set could only hold one of them.
var pageNames = []string{
	"home", "blog", "post",
	"admin_login", "admin_dashboard", "admin_editor", "admin_contacts",
}

// loginErrors turns the ?error= codes the auth handler redirects with into
// text for the sign-in form. Unknown codes get a generic message.
var loginErrors = map[string]string{
	"CredentialsSignin": "Invalid email or password.",
	"Configuration":     "Sign-in is not configured on this server.",
	"AccessDenied":      "This account is not allowed to sign in.",
	"OAuthCallback":     "GitHub sign-in failed. Try again.",
}

// PageHandler renders the public site and the admin back office. Every page
// reads the same documents as the JSON API, so unsaved resources show their
// defaults, and the home page also falls back to showcase content for any
// list that is stored empty.
type PageHandler struct {
	content *service.ContentService
	auth    *service.AuthService
	pages   map[string]*template.Template
	logger  *slog.Logger
}

// pageData is what every template receives; Data is page specific.
type pageData struct {
	Title   string
	SEO     model.SEO
	Session *auth.Session
	Admin   bool
	Year    int
	Data    any
}

// NewPageHandler parses base.html together with each page template found in
// templates.
func NewPageHandler(templates fs.FS, contentSvc *service.ContentService, authSvc *service.AuthService, logger *slog.Logger) (*PageHandler, error) {
	funcs := template.FuncMap{"join": strings.Join}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templates,
			"templates/base.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &PageHandler{content: contentSvc, auth: authSvc, pages: pages, logger: logger}, nil
}

type homeData struct {
	*model.ResumeView
	About      model.About
	Categories []model.SkillCategory
	Featured   []model.BlogPost
}

// HandleHome renders the landing page: hero and about, skill cards and
// meters, work and education timelines, featured posts and the contact
// form. It reads five documents; any of them missing falls back to its
// bundled default.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.content.ResumeView(ctx, "")
	if err != nil {
		h.fail(w, err)
		return
	}
	data := homeData{ResumeView: view}
	if err := h.content.Decode(ctx, content.About, &data.About); err != nil {
		h.fail(w, err)
		return
	}
	if err := h.content.Decode(ctx, content.SkillCategories, &data.Categories); err != nil {
		h.fail(w, err)
		return
	}
	posts, err := h.content.ListBlogPosts(ctx, "")
	if err != nil {
		h.fail(w, err)
		return
	}
	for _, p := range posts {
		if p.Featured {
			data.Featured = append(data.Featured, p)
		}
	}
	data.fillEmptySections()

	h.render(w, r, "home", "", data)
}

// fillEmptySections swaps every empty list for the bundled showcase content,
// so a section the admin cleared still renders. Each list falls back on its
// own: saving only soft skills keeps the bundled technical ones.
func (d *homeData) fillEmptySections() {
	if len(d.Categories) == 0 {
		d.Categories = content.ShowcaseSkillCategories()
	}
	if len(d.Technical) == 0 {
		d.Technical = content.ShowcaseSkills(model.SkillTechnical)
	}
	if len(d.Soft) == 0 {
		d.Soft = content.ShowcaseSkills(model.SkillSoft)
	}
	if len(d.Work) == 0 {
		d.Work = content.ShowcaseExperience(model.ExperienceWork)
	}
	if len(d.Education) == 0 {
		d.Education = content.ShowcaseExperience(model.ExperienceEducation)
	}
}

type blogData struct {
	Category   string
	Categories []string
	Posts      []model.BlogPost
}

// HandleBlog lists posts, optionally filtered by ?category=. The category
// links come from every post, not just the filtered ones, so the visitor
// can switch filters from any view.
func (h *PageHandler) HandleBlog(w http.ResponseWriter, r *http.Request) {
	all, err := h.content.ListBlogPosts(r.Context(), "")
	if err != nil {
		h.fail(w, err)
		return
	}
	data := blogData{Category: r.URL.Query().Get("category"), Posts: all}

	seen := map[string]bool{}
	for _, p := range all {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			data.Categories = append(data.Categories, p.Category)
		}
	}
	sort.Strings(data.Categories)

	if data.Category != "" {
		if data.Posts, err = h.content.ListBlogPosts(r.Context(), data.Category); err != nil {
			h.fail(w, err)
			return
		}
	}
	h.render(w, r, "blog", "Blog", data)
}

// HandlePost renders one post by slug; an unknown slug is a 404.
func (h *PageHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.content.GetBlogPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, r, "post", post.Title, post)
}

type loginData struct {
	Error           string
	CallbackURL     string
	PasswordEnabled bool
	GitHubEnabled   bool
}

// HandleLogin shows the sign-in form. Visitors who already hold an admin
// session go straight to their callback.
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	callback := safeRedirect(q.Get("callbackUrl"), defaultCallback)
	if s, ok := auth.SessionFromContext(r.Context()); ok && s.IsAdmin() {
		http.Redirect(w, r, callback, http.StatusSeeOther)
		return
	}

	data := loginData{
		CallbackURL:     callback,
		PasswordEnabled: h.auth.PasswordConfigured(),
		GitHubEnabled:   h.auth.GitHubConfigured(),
	}
	if code := q.Get("error"); code != "" {
		data.Error = loginErrors[code]
		if data.Error == "" {
			data.Error = "Sign-in failed."
		}
	}
	h.render(w, r, "admin_login", "Sign in", data)
}

type dashboardResource struct {
	Name    string
	Label   string
	Backups int
}

type dashboardData struct {
	Resources []dashboardResource
	Unread    int
}

// HandleDashboard lists the editable resources with their backup counts
// and shows how many contact messages are still unread.
func (h *PageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data dashboardData
	for _, res := range content.All() {
		if !res.Editable {
			continue
		}
		backups, err := h.content.ListBackups(ctx, res.Name)
		if err != nil {
			h.fail(w, err)
			return
		}
		data.Resources = append(data.Resources, dashboardResource{Name: res.Name, Label: res.Label, Backups: len(backups)})
	}

	msgs, err := h.content.ListContacts(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	for _, m := range msgs {
		if m.Status == model.ContactUnread {
			data.Unread++
		}
	}
	h.render(w, r, "admin_dashboard", "Dashboard", data)
}

type editorData struct {
	Name    string
	Label   string
	Backups []model.Backup
}

// HandleEditor shows the editor for one resource. The document itself is
// loaded by the browser from the JSON API so Reset and Save use the same
// endpoint.
func (h *PageHandler) HandleEditor(w http.ResponseWriter, r *http.Request) {
	res, ok := content.Lookup(chi.URLParam(r, "resource"))
	if !ok || !res.Editable {
		h.fail(w, apperror.NotFound("resource", chi.URLParam(r, "resource")))
		return
	}
	backups, err := h.content.ListBackups(r.Context(), res.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, r, "admin_editor", "Edit "+res.Label, editorData{Name: res.Name, Label: res.Label, Backups: backups})
}

// HandleContacts renders the inbox, newest first. Status changes and
// deletes are made from the page through the JSON API.
func (h *PageHandler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.content.ListContacts(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, r, "admin_contacts", "Messages", msgs)
}

// render executes a page into a buffer first so a template error never
// leaves a half-written page behind.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	pd := pageData{
		Title: title,
		SEO:   h.seo(r.Context()),
		Admin: strings.HasPrefix(page, "admin_") && page != "admin_login",
		Year:  time.Now().Year(),
		Data:  data,
	}
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		pd.Session = s
	}

	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "base", pd); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// seo loads the SEO document for the <head> of every page. A failure only
// costs the meta tags, so it is logged and the page still renders.
func (h *PageHandler) seo(ctx context.Context) model.SEO {
	var seo model.SEO
	if err := h.content.Decode(ctx, content.SEO, &seo); err != nil {
		h.logger.Warn("loading SEO document failed", slog.String("error", err.Error()))
	}
	return seo
}

// fail answers a page request that could not be built: 404 for a missing
// resource or post, 500 for anything else, with the cause logged.
func (h *PageHandler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	h.logger.Error("page failed", slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
