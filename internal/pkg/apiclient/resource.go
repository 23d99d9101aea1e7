package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is the backend's standard list metadata.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// ListQuery holds page, limit, search and entity specific filters.
type ListQuery struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Normalize clamps page and limit to sane values.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Values encodes the query for the backend.
func (q ListQuery) Values() url.Values {
	q = q.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for k, val := range q.Filters {
		if strings.TrimSpace(val) != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Page is one page of a listed resource.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Resource is a typed client for one /api/admin/<name> collection.
type Resource[T any] struct {
	client *Client
	name   string
}

// NewResource binds the collection /api/admin/<name> to T.
func NewResource[T any](client *Client, name string) *Resource[T] {
	return &Resource[T]{client: client, name: strings.Trim(name, "/")}
}

func (r *Resource[T]) path(parts ...string) string {
	p := "/api/admin/" + r.name
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (r *Resource[T]) endpoint(op string) string {
	return "admin." + r.name + "." + op
}

// List fetches one page. The payload may be a bare array next to the
// pagination block or an object with items and pagination inside data.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) (*Page[T], error) {
	q = q.Normalize()
	endpoint := r.endpoint("list")
	env, err := r.client.do(ctx, request{endpoint: endpoint, method: http.MethodGet, path: r.path(), query: q.Values()})
	if err != nil {
		return nil, err
	}

	page := &Page[T]{}
	data := bytes.TrimSpace(env.Data)
	switch {
	case len(data) == 0 || string(data) == "null":
		page.Items = []T{}
	case data[0] == '[':
		if err := decodeField(endpoint, env.Data, &page.Items); err != nil {
			return nil, err
		}
	default:
		var nested struct {
			Items      []T         `json:"items"`
			Pagination *Pagination `json:"pagination"`
		}
		if err := decodeField(endpoint, env.Data, &nested); err != nil {
			return nil, err
		}
		page.Items = nested.Items
		if nested.Pagination != nil {
			page.Pagination = *nested.Pagination
		}
	}

	if p := env.pagination(); p != nil {
		page.Pagination = *p
	}
	page.Pagination = fillPagination(page.Pagination, q, len(page.Items))
	return page, nil
}

// fillPagination derives missing fields so templates can rely on them.
func fillPagination(p Pagination, q ListQuery, count int) Pagination {
	if p.Page == 0 {
		p.Page = q.Page
	}
	if p.Limit == 0 {
		p.Limit = q.Limit
	}
	if p.Total == 0 && count > 0 && p.TotalPages == 0 {
		p.Total = (p.Page-1)*p.Limit + count
	}
	if p.TotalPages == 0 && p.Limit > 0 {
		p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
	}
	if !p.HasNext && p.Page < p.TotalPages {
		p.HasNext = true
	}
	if !p.HasPrev && p.Page > 1 {
		p.HasPrev = true
	}
	return p
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	endpoint := r.endpoint("get")
	env, err := r.client.do(ctx, request{endpoint: endpoint, method: http.MethodGet, path: r.path(id)})
	if err != nil {
		return nil, err
	}
	var out T
	if err := decodeField(endpoint, env.Data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, item *T) (*T, error) {
	return r.write(ctx, "create", http.MethodPost, r.path(), item)
}

func (r *Resource[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	return r.write(ctx, "update", http.MethodPut, r.path(id), item)
}

func (r *Resource[T]) write(ctx context.Context, op, method, path string, item *T) (*T, error) {
	endpoint := r.endpoint(op)
	env, err := r.client.do(ctx, request{endpoint: endpoint, method: method, path: path, body: item})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(env.Data)) == 0 || string(env.Data) == "null" {
		// Some endpoints answer {success:true} only.
		return item, nil
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.do(ctx, request{endpoint: r.endpoint("delete"), method: http.MethodDelete, path: r.path(id)})
	return err
}

// Activate calls POST /api/admin/<name>/<id>/activate. The backend
// deactivates whichever record was active before.
func (r *Resource[T]) Activate(ctx context.Context, id string) error {
	_, err := r.client.do(ctx, request{endpoint: r.endpoint("activate"), method: http.MethodPost, path: r.path(id, "activate")})
	return err
}
