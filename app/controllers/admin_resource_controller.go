package controllers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/app/repository"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/flash"
)

// FormField is one input of an admin form
type FormField struct {
	Name     string
	Key      string
	Label    string
	Type     string
	Value    string
	Options  []string
	Checked  bool
	Required bool
	Help     string
	Error    string
}

// ListFilter is a select filter above an admin list
type ListFilter struct {
	Name     string
	Label    string
	Options  []string
	Selected string
}

type adminRow struct {
	ID     string
	Label  string
	Cells  []string
	Active bool
}

// AdminResource is the CRUD screen set of one entity. Every list render
// reads from the backend again, mutations redirect back to the list.
type AdminResource[T models.Record] struct {
	Name     string
	Title    string
	Singular string
	Repo     repository.CrudRepository[T]
	// Activation is set for single-active entities.
	Activation repository.ActivatableRepository[T]
	ReadOnly   bool
	Filters    []ListFilter
	Columns    []string
	Row        func(T) []string
	Fields     func(item T, errs map[string]string) []FormField
	// Bind copies the submitted form onto item and reports values that
	// could not be parsed.
	Bind func(c *fiber.Ctx, item *T) map[string]string
}

func (rc *AdminResource[T]) base() string {
	return constants.AdminRoute + "/" + rc.Name
}

// Register installs the routes below r, which is the /admin group.
func (rc *AdminResource[T]) Register(r fiber.Router) {
	g := r.Group("/" + rc.Name)
	g.Get("/", rc.HandleList)
	if !rc.ReadOnly {
		g.Get("/create", rc.HandleCreate)
		g.Post("/store", rc.HandleStore)
		g.Get("/edit/:id", rc.HandleEdit)
		g.Post("/update/:id", rc.HandleUpdate)
		g.Get("/delete/:id", rc.HandleDeleteConfirm)
		g.Post("/delete/:id", rc.HandleDelete)
	}
	if rc.Activation != nil {
		g.Get("/activate/:id", rc.HandleActivateConfirm)
		g.Post("/activate/:id", rc.HandleActivate)
	}
}

// handleError is a helper method for consistent error handling
func (rc *AdminResource[T]) handleError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("[Admin %s] %s: %v", rc.Title, message, err)
	return flash.Error(c, rc.base(), message+": "+apiclient.UserMessage(err))
}

func (rc *AdminResource[T]) HandleList(c *fiber.Ctx) error {
	q := apiclient.ListQuery{
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", apiclient.DefaultPageSize),
		Search:  c.Query("search"),
		Filters: map[string]string{},
	}
	filters := make([]ListFilter, 0, len(rc.Filters))
	for _, f := range rc.Filters {
		f.Selected = c.Query(f.Name)
		if f.Selected != "" {
			q.Filters[f.Name] = f.Selected
		}
		filters = append(filters, f)
	}

	ctx, cancel := backendContext(c)
	defer cancel()
	page, err := rc.Repo.List(ctx, q)
	if err != nil {
		log.Errorf("[Admin %s] Failed to list: %v", rc.Title, err)
		page = &apiclient.Page[T]{}
		flashNow(c, "error", "Failed to load "+strings.ToLower(rc.Title)+": "+apiclient.UserMessage(err))
	}

	rows := make([]adminRow, 0, len(page.Items))
	for _, item := range page.Items {
		rows = append(rows, adminRow{
			ID:     item.GetID(),
			Label:  item.Label(),
			Cells:  rc.Row(item),
			Active: isActive(item),
		})
	}

	return renderAdmin(c, "admin/list", " | "+rc.Title, fiber.Map{
		"Title":       rc.Title,
		"Singular":    rc.Singular,
		"Base":        rc.base(),
		"Columns":     rc.Columns,
		"Rows":        rows,
		"Pagination":  page.Pagination,
		"Search":      q.Search,
		"Filters":     filters,
		"ReadOnly":    rc.ReadOnly,
		"CanActivate": rc.Activation != nil,
		"PrevURL":     rc.pageURL(c, page.Pagination.Page-1),
		"NextURL":     rc.pageURL(c, page.Pagination.Page+1),
	})
}

func (rc *AdminResource[T]) pageURL(c *fiber.Ctx, page int) string {
	q := queryValues(c)
	q.Set("page", fmt.Sprint(page))
	return rc.base() + "?" + q.Encode()
}

func (rc *AdminResource[T]) renderForm(c *fiber.Ctx, item T, action string, isEdit bool, errs map[string]string) error {
	title := "New " + rc.Singular
	if isEdit {
		title = "Edit " + item.Label()
	}
	return renderAdmin(c, "admin/form", " | "+title, fiber.Map{
		"Heading":   title,
		"Base":      rc.base(),
		"Action":    action,
		"Fields":    rc.Fields(item, errs),
		"FormError": errs["_"],
	})
}

func (rc *AdminResource[T]) HandleCreate(c *fiber.Ctx) error {
	var item T
	return rc.renderForm(c, item, rc.base()+"/store", false, nil)
}

// bindAndValidate applies the form and runs the struct validation.
func (rc *AdminResource[T]) bindAndValidate(c *fiber.Ctx, item *T) map[string]string {
	errs := rc.Bind(c, item)
	for k, v := range models.FieldErrors((*item).Validate()) {
		if _, ok := errs[k]; !ok {
			if errs == nil {
				errs = map[string]string{}
			}
			errs[k] = v
		}
	}
	return errs
}

func (rc *AdminResource[T]) HandleStore(c *fiber.Ctx) error {
	var item T
	if errs := rc.bindAndValidate(c, &item); len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return rc.renderForm(c, item, rc.base()+"/store", false, errs)
	}

	ctx, cancel := backendContext(c)
	defer cancel()
	created, err := rc.Repo.Create(ctx, &item)
	if err != nil {
		log.Errorf("[Admin %s] Failed to create: %v", rc.Title, err)
		c.Status(statusFor(err))
		return rc.renderForm(c, item, rc.base()+"/store", false, map[string]string{"_": apiclient.UserMessage(err)})
	}
	return flash.Success(c, rc.base(), rc.Singular+" "+(*created).Label()+" created")
}

func (rc *AdminResource[T]) load(c *fiber.Ctx) (*T, error) {
	ctx, cancel := backendContext(c)
	defer cancel()
	return rc.Repo.Get(ctx, c.Params("id"))
}

func (rc *AdminResource[T]) HandleEdit(c *fiber.Ctx) error {
	item, err := rc.load(c)
	if err != nil {
		return rc.handleError(c, rc.Singular+" could not be loaded", err)
	}
	return rc.renderForm(c, *item, rc.base()+"/update/"+c.Params("id"), true, nil)
}

// HandleUpdate binds the form onto the stored record so fields the form
// does not show are kept.
func (rc *AdminResource[T]) HandleUpdate(c *fiber.Ctx) error {
	item, err := rc.load(c)
	if err != nil {
		return rc.handleError(c, rc.Singular+" could not be loaded", err)
	}
	action := rc.base() + "/update/" + c.Params("id")

	if errs := rc.bindAndValidate(c, item); len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return rc.renderForm(c, *item, action, true, errs)
	}

	ctx, cancel := backendContext(c)
	defer cancel()
	if _, err := rc.Repo.Update(ctx, c.Params("id"), item); err != nil {
		log.Errorf("[Admin %s] Failed to update %s: %v", rc.Title, c.Params("id"), err)
		c.Status(statusFor(err))
		return rc.renderForm(c, *item, action, true, map[string]string{"_": apiclient.UserMessage(err)})
	}
	return flash.Success(c, rc.base(), rc.Singular+" "+(*item).Label()+" updated")
}

func (rc *AdminResource[T]) HandleDeleteConfirm(c *fiber.Ctx) error {
	item, err := rc.load(c)
	if err != nil {
		return rc.handleError(c, rc.Singular+" could not be loaded", err)
	}
	return renderAdmin(c, "admin/confirm", " | Delete "+rc.Singular, fiber.Map{
		"Heading":   "Delete " + strings.ToLower(rc.Singular),
		"Message":   fmt.Sprintf("Delete %s? This cannot be undone.", (*item).Label()),
		"Action":    rc.base() + "/delete/" + c.Params("id"),
		"Submit":    "Delete",
		"Danger":    true,
		"CancelURL": rc.base(),
	})
}

func (rc *AdminResource[T]) HandleDelete(c *fiber.Ctx) error {
	ctx, cancel := backendContext(c)
	defer cancel()
	if err := rc.Repo.Delete(ctx, c.Params("id")); err != nil {
		return rc.handleError(c, rc.Singular+" could not be deleted", err)
	}
	return flash.Success(c, rc.base(), rc.Singular+" deleted")
}

// HandleActivateConfirm asks before switching the active record. When
// another record is active the prompt names both.
func (rc *AdminResource[T]) HandleActivateConfirm(c *fiber.Ctx) error {
	target, err := rc.load(c)
	if err != nil {
		return rc.handleError(c, rc.Singular+" could not be loaded", err)
	}
	if isActive(*target) {
		return flash.Info(c, rc.base(), (*target).Label()+" is already active")
	}

	ctx, cancel := backendContext(c)
	defer cancel()
	page, err := rc.Repo.List(ctx, apiclient.ListQuery{Limit: apiclient.MaxPageSize})
	if err != nil {
		return rc.handleError(c, "Active "+strings.ToLower(rc.Singular)+" could not be determined", err)
	}

	return renderAdmin(c, "admin/confirm", " | Activate "+rc.Singular, fiber.Map{
		"Heading":   "Activate " + strings.ToLower(rc.Singular),
		"Message":   ActivationPrompt(*target, page.Items),
		"Action":    rc.base() + "/activate/" + c.Params("id"),
		"Submit":    "Activate",
		"CancelURL": rc.base(),
	})
}

func (rc *AdminResource[T]) HandleActivate(c *fiber.Ctx) error {
	ctx, cancel := backendContext(c)
	defer cancel()
	if err := rc.Activation.Activate(ctx, c.Params("id")); err != nil {
		return rc.handleError(c, rc.Singular+" could not be activated", err)
	}
	return flash.Success(c, rc.base(), rc.Singular+" activated")
}

// ActivationPrompt is the confirmation text for activating target. items
// is the already fetched list the currently active record is looked up in.
func ActivationPrompt[T models.Record](target T, items []T) string {
	for _, item := range items {
		if item.GetID() != target.GetID() && isActive(item) {
			return fmt.Sprintf("Activate %s? %s is active now and will be deactivated.", target.Label(), item.Label())
		}
	}
	return fmt.Sprintf("Activate %s?", target.Label())
}

func isActive(v interface{}) bool {
	a, ok := v.(interface{ Active() bool })
	return ok && a.Active()
}

// flashNow shows a message on the page being rendered.
func flashNow(c *fiber.Ctx, kind, message string) {
	flash.Set(c, fiber.Map{"type": kind, "message": message})
}

func statusFor(err error) int {
	if apiclient.IsBusiness(err) {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusBadGateway
}
