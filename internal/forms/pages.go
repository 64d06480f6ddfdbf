package forms

import (
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-wiki/internal/pages"
)

// URLForm picks the URL of a new page or the target of a move.
type URLForm struct {
	URL string `json:"url"`

	exists func(string) bool
}

// NewURLForm decodes a URL form. exists reports whether a page is already
// stored at a cleaned URL and may be nil.
func NewURLForm(values url.Values, exists func(string) bool) URLForm {
	return URLForm{URL: value(values, "url"), exists: exists}
}

// Clean returns the normalised URL. It is only meaningful after Validate
// succeeded.
func (f URLForm) Clean() string {
	clean, err := pages.CleanURL(f.URL)
	if err != nil {
		return ""
	}
	return clean
}

func (f URLForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.URL,
			notBlank("wiki.forms.url.required", "url is required"),
			validation.By(func(any) error {
				clean, err := pages.CleanURL(f.URL)
				if err != nil {
					return validation.NewError("wiki.forms.url.invalid", "url is not valid")
				}
				if f.exists != nil && f.exists(clean) {
					return validation.NewError("wiki.forms.url.exists", fmt.Sprintf("The URL %q exists already.", clean))
				}
				return nil
			}),
		),
	)
}

// EditorForm is posted from the page editor.
type EditorForm struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags"`
}

// NewEditorForm decodes an editor form.
func NewEditorForm(values url.Values) EditorForm {
	return EditorForm{
		Title: value(values, "title"),
		Body:  values.Get("body"),
		Tags:  value(values, "tags"),
	}
}

// EditorFormFor fills the editor with a stored page.
func EditorFormFor(page *pages.Page) EditorForm {
	if page == nil {
		return EditorForm{}
	}
	return EditorForm{
		Title: page.Title,
		Body:  page.Body,
		Tags:  strings.Join(page.Tags, ", "),
	}
}

// TagList splits the comma separated tags field.
func (f EditorForm) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(f.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (f EditorForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, notBlank("wiki.forms.editor.title_required", "title is required")),
	)
}

// SearchForm is the search box.
type SearchForm struct {
	Term       string `json:"term"`
	IgnoreCase bool   `json:"ignore_case"`
}

// NewSearchForm decodes a search form. The ignore case checkbox defaults to
// on when the form is not submitted.
func NewSearchForm(values url.Values) SearchForm {
	form := SearchForm{Term: value(values, "term"), IgnoreCase: true}
	if form.Term != "" {
		form.IgnoreCase = checked(values, "ignore_case")
	}
	return form
}

func (f SearchForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Term, notBlank("wiki.forms.search.term_required", "term is required")),
	)
}
