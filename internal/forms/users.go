package forms

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoginForm is posted to /user/login/.
type LoginForm struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

// NewLoginForm decodes a login form.
func NewLoginForm(values url.Values) LoginForm {
	return LoginForm{
		Name:     value(values, "name"),
		Password: values.Get("password"),
		Next:     value(values, "next"),
	}
}

func (f LoginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, notBlank("wiki.forms.login.name_required", "name is required")),
		validation.Field(&f.Password, validation.Required.Error("password is required")),
	)
}

// CreateUserForm is posted to /user/create/.
type CreateUserForm struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// NewCreateUserForm decodes an account creation form.
func NewCreateUserForm(values url.Values) CreateUserForm {
	return CreateUserForm{
		Name:     value(values, "name"),
		Password: values.Get("password"),
		Confirm:  values.Get("confirm"),
	}
}

func (f CreateUserForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			notBlank("wiki.forms.create_user.name_required", "name is required"),
			validation.Length(1, 64).Error("name must be at most 64 characters"),
		),
		validation.Field(&f.Password, validation.Required.Error("password is required")),
		validation.Field(&f.Confirm, validation.By(func(any) error {
			if f.Confirm != f.Password {
				return validation.NewError("wiki.forms.create_user.confirm_mismatch", "passwords must match")
			}
			return nil
		})),
	)
}

// DeleteUserForm confirms a deletion with the target user's password.
type DeleteUserForm struct {
	Password string `json:"password"`
}

// NewDeleteUserForm decodes a deletion form.
func NewDeleteUserForm(values url.Values) DeleteUserForm {
	return DeleteUserForm{Password: values.Get("password")}
}

func (f DeleteUserForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Password, validation.Required.Error("password is required")),
	)
}

// DeleteByRoleForm selects the role whose users are removed.
type DeleteByRoleForm struct {
	Role string `json:"role"`
}

// NewDeleteByRoleForm decodes a bulk deletion form.
func NewDeleteByRoleForm(values url.Values) DeleteByRoleForm {
	return DeleteByRoleForm{Role: value(values, "role")}
}

func (f DeleteByRoleForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Role, notBlank("wiki.forms.delete_by_role.role_required", "role is required")),
	)
}
