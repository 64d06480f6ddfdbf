package pagescmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-wiki/internal/pages"
)

const (
	movePageMessageType   = "wiki.pages.move"
	deletePageMessageType = "wiki.pages.delete"
)

// MovePageCommand renames the page at URL to NewURL.
type MovePageCommand struct {
	URL    string `json:"url"`
	NewURL string `json:"new_url"`
}

// Type implements command.Message.
func (MovePageCommand) Type() string { return movePageMessageType }

// Validate rejects URLs that could leave the content root.
func (cmd MovePageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.URL, validation.By(pageURL("wiki.pages.move.url_invalid"))),
		validation.Field(&cmd.NewURL,
			validation.By(pageURL("wiki.pages.move.new_url_invalid")),
			validation.By(func(any) error {
				from, _ := pages.ValidateURL(cmd.URL)
				to, _ := pages.ValidateURL(cmd.NewURL)
				if from != "" && from == to {
					return validation.NewError("wiki.pages.move.same_url", "new_url must differ from url")
				}
				return nil
			}),
		),
	)
}

// DeletePageCommand removes the page at URL.
type DeletePageCommand struct {
	URL string `json:"url"`
}

// Type implements command.Message.
func (DeletePageCommand) Type() string { return deletePageMessageType }

// Validate rejects URLs that could leave the content root.
func (cmd DeletePageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.URL, validation.By(pageURL("wiki.pages.delete.url_invalid"))),
	)
}

func pageURL(code string) validation.RuleFunc {
	return func(value any) error {
		url, _ := value.(string)
		if _, err := pages.ValidateURL(url); err != nil {
			return validation.NewError(code, "url is not a valid page path")
		}
		return nil
	}
}
