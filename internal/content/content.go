// Package content is the registry of editable resources: their names, the
// bundled default document served when nothing has been saved yet, and the
// shape check each body must pass before it is persisted.
package content

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/validation"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// Resource names, as they appear in /api/portfolio/{resource}.
const (
	About           = "about"
	Blog            = "blog"
	Skills          = "skills"
	SkillCategories = "skill-categories"
	Experience      = "experience"
	Resume          = "resume"
	SEO             = "seo"
	Contacts        = "contacts"
)

// Resource describes one named document.
type Resource struct {
	Name  string
	Label string

	// Private resources are only readable with an admin session.
	Private bool

	// Editable resources accept a wholesale POST of the document.
	// Contacts are appended through the contact form instead.
	Editable bool

	check func(v *validation.Validator, body []byte) error
}

var registry = []Resource{
	{Name: About, Label: "About", Editable: true, check: checkObject[model.About]},
	{Name: Blog, Label: "Blog", Editable: true, check: checkBlogPosts},
	{Name: Skills, Label: "Skills", Editable: true, check: checkList[model.Skill]},
	{Name: SkillCategories, Label: "Skill categories", Editable: true, check: checkList[model.SkillCategory]},
	{Name: Experience, Label: "Experience", Editable: true, check: checkList[model.Experience]},
	{Name: Resume, Label: "Resume", Editable: true, check: checkObject[model.Resume]},
	{Name: SEO, Label: "SEO", Editable: true, check: checkObject[model.SEO]},
	{Name: Contacts, Label: "Contacts", Private: true, check: checkList[model.ContactMessage]},
}

// Lookup returns the resource registered under name.
func Lookup(name string) (Resource, bool) {
	for _, r := range registry {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// All returns every registered resource in display order.
func All() []Resource {
	out := make([]Resource, len(registry))
	copy(out, registry)
	return out
}

// Default returns the bundled default document, exactly as shipped.
func (r Resource) Default() []byte {
	b, err := defaultsFS.ReadFile(path.Join("defaults", r.Name+".json"))
	if err != nil {
		// Every registered resource ships a default; a miss is a build error.
		panic(fmt.Sprintf("content: missing default for %q: %v", r.Name, err))
	}
	return b
}

// Check decodes body into the resource's model and runs the struct rules.
// Failures are returned as apperror.ErrValidation.
func (r Resource) Check(v *validation.Validator, body []byte) error {
	if !json.Valid(body) {
		return apperror.ValidationFailed("", "request body must be valid JSON")
	}
	return r.check(v, body)
}

// checkObject decodes body into a T and runs the struct tags on it. Unknown
// fields are accepted so older documents keep loading.
func checkObject[T any](v *validation.Validator, body []byte) error {
	var doc T
	if err := decode(body, &doc); err != nil {
		return err
	}
	return structErr(v, v.Struct(doc))
}

// checkList is checkObject for array documents. A JSON null decodes into a
// nil slice and is rejected: collections are always arrays, possibly empty.
func checkList[T any](v *validation.Validator, body []byte) error {
	var docs []T
	if err := decode(body, &docs); err != nil {
		return err
	}
	if docs == nil {
		return apperror.ValidationFailed("", "document must be a JSON array")
	}
	return structErr(v, v.Var(docs, "dive"))
}

// checkBlogPosts validates a whole blog collection. Unlike a single upserted
// post, every entry of a full collection must carry a unique id, otherwise
// delete-by-id could remove more than one post.
func checkBlogPosts(v *validation.Validator, body []byte) error {
	if err := checkList[model.BlogPost](v, body); err != nil {
		return err
	}
	var posts []model.BlogPost
	_ = json.Unmarshal(body, &posts)

	seen := make(map[string]bool, len(posts))
	for i, p := range posts {
		field := fmt.Sprintf("[%d].id", i)
		if p.ID == "" {
			return apperror.ValidationFailed(field, field+" is required")
		}
		if seen[p.ID] {
			return apperror.ValidationFailed(field, fmt.Sprintf("duplicate blog post id %q", p.ID))
		}
		seen[p.ID] = true
	}
	return nil
}

// CheckBlogPost validates a single post sent for upsert.
func CheckBlogPost(v *validation.Validator, post model.BlogPost) error {
	return structErr(v, v.Struct(post))
}

// CheckContact validates a contact form submission.
func CheckContact(v *validation.Validator, msg model.ContactMessage) error {
	return structErr(v, v.Struct(msg))
}

// decode turns a decode failure into a ValidationFailed error. Type
// mismatches name the offending field; syntax errors report the document.
func decode(body []byte, dst any) error {
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			return apperror.ValidationFailed(field,
				fmt.Sprintf("%s must be %s, got %s", fieldOrDocument(field), typeErr.Type.String(), typeErr.Value))
		}
		return apperror.ValidationFailed("", "request body does not match the document shape")
	}
	return nil
}

func fieldOrDocument(field string) string {
	if field == "" {
		return "document"
	}
	return field
}

// structErr folds validator errors into one apperror. The reported field is
// the alphabetically first failing one so the message is stable across runs.
func structErr(v *validation.Validator, err error) error {
	if err == nil {
		return nil
	}
	errs := v.ValidationErrors(err)
	if errs == nil {
		return apperror.ValidationFailed("", err.Error())
	}
	details := validation.Details(errs)
	field := ""
	for f := range details {
		if field == "" || f < field {
			field = f
		}
	}
	return apperror.ValidationFailed(field, validation.Summary(errs))
}
