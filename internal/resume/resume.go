// Package resume turns a model.ResumeView into a printable HTML page and,
// through a Renderer, into a PDF.
package resume

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/sakif/portfolio/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.New("resume.html").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/resume.html"))

// Renderer prints an HTML document to PDF.
type Renderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// Render writes the resume as a standalone HTML page in the view's
// template (modern, classic or minimal).
func Render(w io.Writer, view *model.ResumeView) error {
	if err := tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("resume: rendering %s template: %w", view.Template, err)
	}
	return nil
}

// PDF renders view to HTML and hands it to r.
func PDF(ctx context.Context, r Renderer, view *model.ResumeView) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, view); err != nil {
		return nil, err
	}
	pdf, err := r.RenderPDF(ctx, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("resume: printing PDF: %w", err)
	}
	return pdf, nil
}

// FileName is the download name for the PDF, e.g. "Jane_Doe_Resume.pdf".
func FileName(view *model.ResumeView) string {
	name := strings.Join(strings.Fields(view.Resume.PersonalInfo.Name), "_")
	if name == "" {
		return "Resume.pdf"
	}
	return name + "_Resume.pdf"
}
