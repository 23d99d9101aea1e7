package models

import (
	"time"

	"github.com/vidora/vidora-web/internal/pkg/utils"
)

const (
	ROLE_USER        = "user"
	ROLE_ADMIN       = "admin"
	STATUS_ACTIVE    = "active"
	STATUS_INACTIVE  = "inactive"
	STATUS_SUSPENDED = "suspended"
)

type User struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name" validate:"required,min=2,max=150"`
	Email       string     `json:"email" validate:"required,email,max=200"`
	Role        string     `json:"role" validate:"oneof=user admin"`
	Status      string     `json:"status" validate:"oneof=active inactive suspended"`
	Company     string     `json:"company,omitempty" validate:"max=120"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func (u User) GetID() string { return u.ID }

func (u User) Label() string { return u.Name + " <" + u.Email + ">" }

func (u User) Validate() error {
	return validate.Struct(u)
}

// AvatarURL returns the Gravatar image for the user's email.
func (u User) AvatarURL(size int) string {
	return utils.GravatarURL(u.Email, size)
}

// Registration is the signup form. The password is forwarded to the
// backend and never stored here.
type Registration struct {
	Name            string `json:"name" form:"name" validate:"required,min=2,max=150"`
	Email           string `json:"email" form:"email" validate:"required,email,max=200"`
	Password        string `json:"password" form:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"-" form:"password_confirm" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms" form:"accept_terms" validate:"required"`
	PlanID          string `json:"planId,omitempty" form:"-"`
	Affiliation     string `json:"affiliation,omitempty" form:"-"`
}

func (r Registration) Validate() error {
	return validate.Struct(r)
}

// Customer is the identity the backend returns after registration. It is
// kept in the web session and forwarded on customer-scoped calls.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
