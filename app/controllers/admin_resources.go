package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/app/repository"
)

func input(errs map[string]string, key, name, label, typ, value string) FormField {
	return FormField{Key: key, Name: name, Label: label, Type: typ, Value: value, Error: errs[key]}
}

func required(f FormField) FormField {
	f.Required = true
	return f
}

func selectField(errs map[string]string, key, name, label, value string, options []string) FormField {
	f := input(errs, key, name, label, "select", value)
	f.Options = options
	return f
}

func checkboxField(errs map[string]string, key, name, label string, checked bool) FormField {
	f := input(errs, key, name, label, "checkbox", "1")
	f.Checked = checked
	return f
}

// secretField never echoes the stored value; an empty submit keeps it.
func secretField(errs map[string]string, key, name, label string, isSet bool) FormField {
	f := input(errs, key, name, label, "password", "")
	if isSet {
		f.Help = "Leave empty to keep the current value"
	}
	return f
}

func formString(c *fiber.Ctx, name string) string {
	return strings.TrimSpace(c.FormValue(name))
}

// setSecret only overwrites when a new value was submitted.
func setSecret(c *fiber.Ctx, name string, dst *string) {
	if v := c.FormValue(name); v != "" {
		*dst = v
	}
}

func formInt(c *fiber.Ctx, name, key string, dst *int, errs map[string]string) {
	v := formString(c, name)
	if v == "" {
		*dst = 0
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		errs[key] = "Must be a whole number"
		return
	}
	*dst = n
}

func formDecimal(c *fiber.Ctx, name, key string, dst *decimal.Decimal, errs map[string]string) {
	v := formString(c, name)
	if v == "" {
		*dst = decimal.Zero
		return
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		errs[key] = "Must be a number"
		return
	}
	*dst = d
}

func formNullDecimal(c *fiber.Ctx, name, key string, dst *decimal.NullDecimal, errs map[string]string) {
	v := formString(c, name)
	if v == "" {
		*dst = decimal.NullDecimal{}
		return
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		errs[key] = "Must be a number"
		return
	}
	*dst = decimal.NewNullDecimal(d)
}

func formDate(c *fiber.Ctx, name, key string, dst **time.Time, errs map[string]string) {
	v := formString(c, name)
	if v == "" {
		*dst = nil
		return
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		errs[key] = "Use the format YYYY-MM-DD"
		return
	}
	*dst = &t
}

// formList splits a comma or newline separated input.
func formList(c *fiber.Ctx, name string, upper bool) []string {
	raw := strings.FieldsFunc(c.FormValue(name), func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if upper {
			v = strings.ToUpper(v)
		}
		out = append(out, v)
	}
	return out
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func intString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// AdminResources bundles the CRUD screens registered under /admin.
type AdminResources struct {
	Contacts      *AdminResource[models.Contact]
	Plans         *AdminResource[models.Plan]
	Subscriptions *AdminResource[models.Subscription]
	Users         *AdminResource[models.User]
	SMTP          *AdminResource[models.SMTPConfig]
	Gateways      *AdminResource[models.PaymentGatewayConfig]
	Attributions  *AdminResource[models.MarketingAttribution]
}

// NewAdminResources wires one screen set per repository.
func NewAdminResources(repos *repository.Repositories) *AdminResources {
	return &AdminResources{
		Contacts:      contactResource(repos.Contacts),
		Plans:         planResource(repos.Plans),
		Subscriptions: subscriptionResource(repos.Subscriptions),
		Users:         userResource(repos.Users),
		SMTP:          smtpResource(repos.SMTPConfigs),
		Gateways:      gatewayResource(repos.Gateways),
		Attributions:  attributionResource(repos.Attributions),
	}
}

// Register installs all screens below r.
func (a *AdminResources) Register(r fiber.Router) {
	a.Contacts.Register(r)
	a.Plans.Register(r)
	a.Subscriptions.Register(r)
	a.Users.Register(r)
	a.SMTP.Register(r)
	a.Gateways.Register(r)
	a.Attributions.Register(r)
}

func contactResource(repo repository.CrudRepository[models.Contact]) *AdminResource[models.Contact] {
	return &AdminResource[models.Contact]{
		Name:     "contacts",
		Title:    "Contacts",
		Singular: "Contact",
		Repo:     repo,
		Filters:  []ListFilter{{Name: "status", Label: "Status", Options: models.ContactStatuses}},
		Columns:  []string{"Name", "Email", "Subject", "Status", "Received"},
		Row: func(m models.Contact) []string {
			return []string{m.Name, m.Email, m.Subject, m.Status, dateString(m.CreatedAt)}
		},
		Fields: func(m models.Contact, errs map[string]string) []FormField {
			status := m.Status
			if status == "" {
				status = models.CONTACT_STATUS_NEW
			}
			return []FormField{
				required(input(errs, "Name", "name", "Name", "text", m.Name)),
				required(input(errs, "Email", "email", "Email", "email", m.Email)),
				input(errs, "Phone", "phone", "Phone", "tel", m.Phone),
				input(errs, "Company", "company", "Company", "text", m.Company),
				required(input(errs, "Subject", "subject", "Subject", "text", m.Subject)),
				required(input(errs, "Message", "message", "Message", "textarea", m.Message)),
				selectField(errs, "Status", "status", "Status", status, models.ContactStatuses),
			}
		},
		Bind: func(c *fiber.Ctx, m *models.Contact) map[string]string {
			m.Name = formString(c, "name")
			m.Email = formString(c, "email")
			m.Phone = formString(c, "phone")
			m.Company = formString(c, "company")
			m.Subject = formString(c, "subject")
			m.Message = formString(c, "message")
			m.Status = formString(c, "status")
			if m.Source == "" {
				m.Source = "admin"
			}
			return nil
		},
	}
}

func planResource(repo repository.CrudRepository[models.Plan]) *AdminResource[models.Plan] {
	return &AdminResource[models.Plan]{
		Name:     "plans",
		Title:    "Plans",
		Singular: "Plan",
		Repo:     repo,
		Filters:  []ListFilter{{Name: "isActive", Label: "Active", Options: []string{"true", "false"}}},
		Columns:  []string{"Name", "Slug", "Price", "Streams", "Active", "Order"},
		Row: func(p models.Plan) []string {
			return []string{p.Name, p.Slug, p.PriceLabel(), strconv.Itoa(p.MaxStreams), yesNo(p.IsActive), strconv.Itoa(p.SortOrder)}
		},
		Fields: func(p models.Plan, errs map[string]string) []FormField {
			period := p.Period
			if period == "" {
				period = models.PERIOD_MONTHLY
			}
			return []FormField{
				required(input(errs, "Name", "name", "Name", "text", p.Name)),
				required(input(errs, "Slug", "slug", "Slug", "text", p.Slug)),
				input(errs, "Description", "description", "Description", "textarea", p.Description),
				required(input(errs, "Price", "price", "Price", "text", p.Price.String())),
				required(input(errs, "Currency", "currency", "Currency", "text", p.Currency)),
				selectField(errs, "Period", "period", "Billing period", period, []string{models.PERIOD_MONTHLY, models.PERIOD_YEARLY}),
				input(errs, "Features", "features", "Features (one per line)", "textarea", strings.Join(p.Features, "\n")),
				required(input(errs, "MaxStreams", "max_streams", "Max streams", "number", intString(p.MaxStreams))),
				selectField(errs, "MaxQuality", "max_quality", "Max quality", p.MaxQuality, []string{"", "sd", "hd", "fhd", "uhd"}),
				input(errs, "TrialDays", "trial_days", "Trial days", "number", intString(p.TrialDays)),
				input(errs, "SortOrder", "sort_order", "Sort order", "number", intString(p.SortOrder)),
				checkboxField(errs, "IsActive", "is_active", "Active", p.IsActive),
				checkboxField(errs, "IsPopular", "is_popular", "Highlight as popular", p.IsPopular),
			}
		},
		Bind: func(c *fiber.Ctx, p *models.Plan) map[string]string {
			errs := map[string]string{}
			p.Name = formString(c, "name")
			p.Slug = strings.ToLower(formString(c, "slug"))
			p.Description = formString(c, "description")
			formDecimal(c, "price", "Price", &p.Price, errs)
			p.Currency = strings.ToUpper(formString(c, "currency"))
			p.Period = formString(c, "period")
			p.Features = formList(c, "features", false)
			formInt(c, "max_streams", "MaxStreams", &p.MaxStreams, errs)
			p.MaxQuality = formString(c, "max_quality")
			formInt(c, "trial_days", "TrialDays", &p.TrialDays, errs)
			formInt(c, "sort_order", "SortOrder", &p.SortOrder, errs)
			p.IsActive = checkbox(c.FormValue("is_active"))
			p.IsPopular = checkbox(c.FormValue("is_popular"))
			return errs
		},
	}
}

func subscriptionResource(repo repository.CrudRepository[models.Subscription]) *AdminResource[models.Subscription] {
	return &AdminResource[models.Subscription]{
		Name:     "subscriptions",
		Title:    "Subscriptions",
		Singular: "Subscription",
		Repo:     repo,
		Filters:  []ListFilter{{Name: "status", Label: "Status", Options: models.SubscriptionStatuses}},
		Columns:  []string{"Customer", "Plan", "Status", "Ends", "Auto renew"},
		Row: func(s models.Subscription) []string {
			return []string{s.UserEmail, s.PlanName, s.Status, dateString(s.EndDate), yesNo(s.AutoRenew)}
		},
		Fields: func(s models.Subscription, errs map[string]string) []FormField {
			status := s.Status
			if status == "" {
				status = models.SUBSCRIPTION_STATUS_PENDING
			}
			return []FormField{
				required(input(errs, "UserID", "user_id", "Customer ID", "text", s.UserID)),
				required(input(errs, "PlanID", "plan_id", "Plan ID", "text", s.PlanID)),
				selectField(errs, "Status", "status", "Status", status, models.SubscriptionStatuses),
				input(errs, "StartDate", "start_date", "Start date", "date", dateString(s.StartDate)),
				input(errs, "EndDate", "end_date", "End date", "date", dateString(s.EndDate)),
				checkboxField(errs, "AutoRenew", "auto_renew", "Renew automatically", s.AutoRenew),
			}
		},
		Bind: func(c *fiber.Ctx, s *models.Subscription) map[string]string {
			errs := map[string]string{}
			s.UserID = formString(c, "user_id")
			s.PlanID = formString(c, "plan_id")
			s.Status = formString(c, "status")
			formDate(c, "start_date", "StartDate", &s.StartDate, errs)
			formDate(c, "end_date", "EndDate", &s.EndDate, errs)
			s.AutoRenew = checkbox(c.FormValue("auto_renew"))
			return errs
		},
	}
}

func userResource(repo repository.CrudRepository[models.User]) *AdminResource[models.User] {
	statuses := []string{models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_SUSPENDED}
	roles := []string{models.ROLE_USER, models.ROLE_ADMIN}
	return &AdminResource[models.User]{
		Name:     "users",
		Title:    "Users",
		Singular: "User",
		Repo:     repo,
		Filters: []ListFilter{
			{Name: "status", Label: "Status", Options: statuses},
			{Name: "role", Label: "Role", Options: roles},
		},
		Columns: []string{"Name", "Email", "Role", "Status", "Last login"},
		Row: func(u models.User) []string {
			return []string{u.Name, u.Email, u.Role, u.Status, dateString(u.LastLoginAt)}
		},
		Fields: func(u models.User, errs map[string]string) []FormField {
			role, status := u.Role, u.Status
			if role == "" {
				role = models.ROLE_USER
			}
			if status == "" {
				status = models.STATUS_ACTIVE
			}
			return []FormField{
				required(input(errs, "Name", "name", "Name", "text", u.Name)),
				required(input(errs, "Email", "email", "Email", "email", u.Email)),
				input(errs, "Company", "company", "Company", "text", u.Company),
				selectField(errs, "Role", "role", "Role", role, roles),
				selectField(errs, "Status", "status", "Status", status, statuses),
			}
		},
		Bind: func(c *fiber.Ctx, u *models.User) map[string]string {
			u.Name = formString(c, "name")
			u.Email = strings.ToLower(formString(c, "email"))
			u.Company = formString(c, "company")
			u.Role = formString(c, "role")
			u.Status = formString(c, "status")
			return nil
		},
	}
}

func smtpResource(repo repository.ActivatableRepository[models.SMTPConfig]) *AdminResource[models.SMTPConfig] {
	encryptions := []string{models.SMTP_ENCRYPTION_NONE, models.SMTP_ENCRYPTION_SSL, models.SMTP_ENCRYPTION_STARTTLS}
	return &AdminResource[models.SMTPConfig]{
		Name:       "smtp",
		Title:      "SMTP configurations",
		Singular:   "SMTP configuration",
		Repo:       repo,
		Activation: repo,
		Columns:    []string{"Name", "Host", "From", "Encryption", "Active"},
		Row: func(s models.SMTPConfig) []string {
			return []string{s.Name, s.Host + ":" + strconv.Itoa(s.Port), s.FromEmail, s.Encryption, yesNo(s.IsActive)}
		},
		Fields: func(s models.SMTPConfig, errs map[string]string) []FormField {
			port, enc := s.Port, s.Encryption
			if port == 0 {
				port = 587
			}
			if enc == "" {
				enc = models.SMTP_ENCRYPTION_STARTTLS
			}
			return []FormField{
				required(input(errs, "Name", "name", "Name", "text", s.Name)),
				required(input(errs, "Host", "host", "Host", "text", s.Host)),
				required(input(errs, "Port", "port", "Port", "number", strconv.Itoa(port))),
				input(errs, "Username", "username", "Username", "text", s.Username),
				secretField(errs, "Password", "password", "Password", s.ID != ""),
				selectField(errs, "Encryption", "encryption", "Encryption", enc, encryptions),
				required(input(errs, "FromEmail", "from_email", "From email", "email", s.FromEmail)),
				input(errs, "FromName", "from_name", "From name", "text", s.FromName),
			}
		},
		Bind: func(c *fiber.Ctx, s *models.SMTPConfig) map[string]string {
			errs := map[string]string{}
			s.Name = formString(c, "name")
			s.Host = formString(c, "host")
			formInt(c, "port", "Port", &s.Port, errs)
			s.Username = formString(c, "username")
			setSecret(c, "password", &s.Password)
			s.Encryption = formString(c, "encryption")
			s.FromEmail = formString(c, "from_email")
			s.FromName = formString(c, "from_name")
			return errs
		},
	}
}

func gatewayResource(repo repository.ActivatableRepository[models.PaymentGatewayConfig]) *AdminResource[models.PaymentGatewayConfig] {
	providers := []string{"mollie", "stripe", "paypal"}
	return &AdminResource[models.PaymentGatewayConfig]{
		Name:       "gateways",
		Title:      "Payment gateways",
		Singular:   "Payment gateway",
		Repo:       repo,
		Activation: repo,
		Filters:    []ListFilter{{Name: "provider", Label: "Provider", Options: providers}},
		Columns:    []string{"Name", "Provider", "Currencies", "Fees", "Test mode", "Active"},
		Row: func(g models.PaymentGatewayConfig) []string {
			fees := g.FixedFee.StringFixed(2) + " + " + g.PercentageFee.String() + "%"
			return []string{g.DisplayName, g.Provider, strings.Join(g.SupportedCurrencies, ", "), fees, yesNo(g.IsTestMode), yesNo(g.IsActive)}
		},
		Fields: func(g models.PaymentGatewayConfig, errs map[string]string) []FormField {
			return []FormField{
				selectField(errs, "Provider", "provider", "Provider", g.Provider, providers),
				required(input(errs, "DisplayName", "display_name", "Display name", "text", g.DisplayName)),
				input(errs, "Description", "description", "Description", "textarea", g.Description),
				input(errs, "SupportedCurrencies", "supported_currencies", "Currencies (comma separated)", "text", strings.Join(g.SupportedCurrencies, ", ")),
				input(errs, "SupportedMethods", "supported_methods", "Methods (comma separated)", "text", strings.Join(g.SupportedMethods, ", ")),
				input(errs, "FixedFee", "fixed_fee", "Fixed fee", "text", g.FixedFee.String()),
				input(errs, "PercentageFee", "percentage_fee", "Percentage fee", "text", g.PercentageFee.String()),
				input(errs, "MinAmount", "min_amount", "Minimum amount", "text", nullDecimalString(g.MinAmount)),
				input(errs, "MaxAmount", "max_amount", "Maximum amount", "text", nullDecimalString(g.MaxAmount)),
				secretField(errs, "APIKey", "api_key", "API key", g.APIKey != ""),
				secretField(errs, "SecretKey", "secret_key", "Secret key", g.SecretKey != ""),
				secretField(errs, "WebhookSecret", "webhook_secret", "Webhook secret", g.WebhookSecret != ""),
				checkboxField(errs, "IsTestMode", "is_test_mode", "Test mode", g.IsTestMode),
				checkboxField(errs, "IsRecommended", "is_recommended", "Recommended", g.IsRecommended),
			}
		},
		Bind: func(c *fiber.Ctx, g *models.PaymentGatewayConfig) map[string]string {
			errs := map[string]string{}
			g.Provider = strings.ToLower(formString(c, "provider"))
			g.DisplayName = formString(c, "display_name")
			g.Description = formString(c, "description")
			g.SupportedCurrencies = formList(c, "supported_currencies", true)
			g.SupportedMethods = formList(c, "supported_methods", false)
			formDecimal(c, "fixed_fee", "FixedFee", &g.FixedFee, errs)
			formDecimal(c, "percentage_fee", "PercentageFee", &g.PercentageFee, errs)
			formNullDecimal(c, "min_amount", "MinAmount", &g.MinAmount, errs)
			formNullDecimal(c, "max_amount", "MaxAmount", &g.MaxAmount, errs)
			setSecret(c, "api_key", &g.APIKey)
			setSecret(c, "secret_key", &g.SecretKey)
			setSecret(c, "webhook_secret", &g.WebhookSecret)
			g.IsTestMode = checkbox(c.FormValue("is_test_mode"))
			g.IsRecommended = checkbox(c.FormValue("is_recommended"))
			return errs
		},
	}
}

func attributionResource(repo repository.CrudRepository[models.MarketingAttribution]) *AdminResource[models.MarketingAttribution] {
	return &AdminResource[models.MarketingAttribution]{
		Name:     "attribution",
		Title:    "Marketing attribution",
		Singular: "Attribution",
		Repo:     repo,
		ReadOnly: true,
		Filters:  []ListFilter{{Name: "utmSource", Label: "Source"}},
		Columns:  []string{"Source", "Medium", "Campaign", "Plan", "Landing page", "Recorded"},
		Row: func(m models.MarketingAttribution) []string {
			return []string{m.UTMSource, m.UTMMedium, m.UTMCampaign, m.PlanSlug, m.LandingPage, dateString(m.CreatedAt)}
		},
	}
}
