package models

import "time"

const (
	CONTACT_STATUS_NEW      = "new"
	CONTACT_STATUS_READ     = "read"
	CONTACT_STATUS_REPLIED  = "replied"
	CONTACT_STATUS_ARCHIVED = "archived"
)

var ContactStatuses = []string{CONTACT_STATUS_NEW, CONTACT_STATUS_READ, CONTACT_STATUS_REPLIED, CONTACT_STATUS_ARCHIVED}

// Contact is a message sent through the contact form or entered by staff.
type Contact struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name" validate:"required,min=2,max=120"`
	Email     string     `json:"email" validate:"required,email,max=200"`
	Phone     string     `json:"phone,omitempty" validate:"max=40"`
	Company   string     `json:"company,omitempty" validate:"max=120"`
	Subject   string     `json:"subject" validate:"required,min=3,max=200"`
	Message   string     `json:"message" validate:"required,min=10,max=5000"`
	Status    string     `json:"status" validate:"oneof=new read replied archived"`
	Source    string     `json:"source,omitempty" validate:"max=50"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (c Contact) GetID() string { return c.ID }

func (c Contact) Label() string { return c.Name + " <" + c.Email + ">" }

func (c Contact) Validate() error {
	return validate.Struct(c)
}
