package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
)

// fakeSMTPRepo keeps SMTP configs in memory and enforces the single active
// record the way the backend does.
type fakeSMTPRepo struct {
	mu        sync.Mutex
	items     []models.SMTPConfig
	created   []models.SMTPConfig
	activated []string
}

func (f *fakeSMTPRepo) List(_ context.Context, q apiclient.ListQuery) (*apiclient.Page[models.SMTPConfig], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SMTPConfig, 0, len(f.items))
	for _, s := range f.items {
		if q.Search == "" || strings.Contains(strings.ToLower(s.Name), strings.ToLower(q.Search)) {
			out = append(out, s)
		}
	}
	return &apiclient.Page[models.SMTPConfig]{
		Items:      out,
		Pagination: apiclient.Pagination{Page: 1, Limit: 20, Total: len(out), TotalPages: 1},
	}, nil
}

func (f *fakeSMTPRepo) Get(_ context.Context, id string) (*models.SMTPConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.items {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, &apiclient.APIError{Endpoint: "smtp", StatusCode: http.StatusNotFound, Message: "not found"}
}

func (f *fakeSMTPRepo) Create(_ context.Context, item *models.SMTPConfig) (*models.SMTPConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *item)
	out := *item
	out.ID = "new"
	f.items = append(f.items, out)
	return &out, nil
}

func (f *fakeSMTPRepo) Update(_ context.Context, id string, item *models.SMTPConfig) (*models.SMTPConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i] = *item
			return item, nil
		}
	}
	return nil, &apiclient.APIError{Endpoint: "smtp", StatusCode: http.StatusNotFound, Message: "not found"}
}

func (f *fakeSMTPRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeSMTPRepo) Activate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, id)
	for i := range f.items {
		f.items[i].IsActive = f.items[i].ID == id
	}
	return nil
}

func smtpFixtures() *fakeSMTPRepo {
	return &fakeSMTPRepo{items: []models.SMTPConfig{
		{ID: "1", Name: "Primary", Host: "smtp.example.com", Port: 587, Encryption: "starttls", FromEmail: "noreply@example.com", Password: "s3cret", IsActive: true},
		{ID: "2", Name: "Backup", Host: "mail.example.net", Port: 465, Encryption: "ssl", FromEmail: "noreply@example.net"},
	}}
}

func newAdminApp(t *testing.T, repo *fakeSMTPRepo) *fiber.App {
	t.Helper()
	app := newTestApp(t)
	smtpResource(repo).Register(app.Group("/admin"))
	return app
}

func TestActivationPrompt(t *testing.T) {
	repo := smtpFixtures()
	primary, backup := repo.items[0], repo.items[1]

	tests := []struct {
		name   string
		target models.SMTPConfig
		items  []models.SMTPConfig
		want   string
	}{
		{
			name:   "names the active record",
			target: backup,
			items:  repo.items,
			want:   "Activate Backup (mail.example.net:465)? Primary (smtp.example.com:587) is active now and will be deactivated.",
		},
		{
			name:   "nothing active",
			target: backup,
			items:  []models.SMTPConfig{backup},
			want:   "Activate Backup (mail.example.net:465)?",
		},
		{
			name:   "target itself active",
			target: primary,
			items:  []models.SMTPConfig{primary},
			want:   "Activate Primary (smtp.example.com:587)?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivationPrompt(tt.target, tt.items))
		})
	}
}

func TestAdminActivateConfirmNamesBothRecords(t *testing.T) {
	repo := smtpFixtures()
	app := newAdminApp(t, repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/smtp/activate/2", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Backup (mail.example.net:465)")
	assert.Contains(t, body, "Primary (smtp.example.com:587) is active now")
	assert.Contains(t, body, `action="/admin/smtp/activate/2"`)
	assert.Empty(t, repo.activated)
}

func TestAdminActivate(t *testing.T) {
	repo := smtpFixtures()
	app := newAdminApp(t, repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/admin/smtp/activate/2", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/smtp", resp.Header.Get(fiber.HeaderLocation))
	assert.Equal(t, []string{"2"}, repo.activated)
	assert.False(t, repo.items[0].IsActive)
	assert.True(t, repo.items[1].IsActive)
}

func TestAdminListRendersRows(t *testing.T) {
	repo := smtpFixtures()
	app := newAdminApp(t, repo)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/smtp/?search=back", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "mail.example.net:465")
	assert.NotContains(t, body, "smtp.example.com:587")
	assert.Contains(t, body, `href="/admin/smtp/activate/2"`)
}

func TestAdminStoreValidation(t *testing.T) {
	repo := smtpFixtures()
	app := newAdminApp(t, repo)

	form := url.Values{
		"name":       {"Relay"},
		"host":       {"relay.example.org"},
		"port":       {"not-a-port"},
		"encryption": {"starttls"},
		"from_email": {"broken"},
	}
	resp, err := app.Test(formRequest(http.MethodPost, "/admin/smtp/store", form), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Please enter a valid email address")
	assert.Contains(t, body, `value="relay.example.org"`)
	assert.Empty(t, repo.created)
}

func TestAdminStoreCreates(t *testing.T) {
	repo := smtpFixtures()
	app := newAdminApp(t, repo)

	form := url.Values{
		"name":       {"Relay"},
		"host":       {"relay.example.org"},
		"port":       {"2525"},
		"username":   {"mailer"},
		"password":   {"hunter22"},
		"encryption": {"none"},
		"from_email": {"hello@example.org"},
	}
	resp, err := app.Test(formRequest(http.MethodPost, "/admin/smtp/store", form), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/smtp", resp.Header.Get(fiber.HeaderLocation))
	require.Len(t, repo.created, 1)
	assert.Equal(t, 2525, repo.created[0].Port)
	assert.Equal(t, "hunter22", repo.created[0].Password)
}

func TestAdminUpdateKeepsSecretWhenEmpty(t *testing.T) {
	repo := smtpFixtures()
	app := newAdminApp(t, repo)

	form := url.Values{
		"name":       {"Primary EU"},
		"host":       {"smtp.example.com"},
		"port":       {"587"},
		"password":   {""},
		"encryption": {"starttls"},
		"from_email": {"noreply@example.com"},
	}
	resp, err := app.Test(formRequest(http.MethodPost, "/admin/smtp/update/1", form), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "Primary EU", repo.items[0].Name)
	assert.Equal(t, "s3cret", repo.items[0].Password)
}
