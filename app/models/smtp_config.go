package models

import (
	"strconv"
	"time"
)

const (
	SMTP_ENCRYPTION_NONE     = "none"
	SMTP_ENCRYPTION_SSL      = "ssl"
	SMTP_ENCRYPTION_STARTTLS = "starttls"
)

// SMTPConfig is one outgoing mail server configuration. Only one may be
// active at a time; the backend enforces that.
type SMTPConfig struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name" validate:"required,min=2,max=100"`
	Host       string     `json:"host" validate:"required,hostname_rfc1123,max=255"`
	Port       int        `json:"port" validate:"required,gte=1,lte=65535"`
	Username   string     `json:"username" validate:"max=255"`
	Password   string     `json:"password,omitempty" validate:"max=255"`
	Encryption string     `json:"encryption" validate:"oneof=none ssl starttls"`
	FromEmail  string     `json:"fromEmail" validate:"required,email,max=200"`
	FromName   string     `json:"fromName" validate:"max=100"`
	IsActive   bool       `json:"isActive"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

func (s SMTPConfig) GetID() string { return s.ID }

func (s SMTPConfig) Label() string {
	return s.Name + " (" + s.Host + ":" + strconv.Itoa(s.Port) + ")"
}

func (s SMTPConfig) Validate() error {
	return validate.Struct(s)
}

func (s SMTPConfig) Active() bool { return s.IsActive }
