package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vidora/vidora-web/internal/pkg/env"
	"github.com/vidora/vidora-web/internal/pkg/metrics"
	"github.com/vidora/vidora-web/internal/pkg/telemetry"
)

const (
	defaultBaseURL = "http://localhost:3000"
	maxBodyBytes   = 4 << 20

	// CustomerHeader carries the customer a request is made for.
	CustomerHeader = "X-Customer-ID"
)

// Client talks to the backend REST API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a client for baseURL authenticated with a service token.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func NewFromEnv() *Client {
	return New(
		strings.TrimSpace(env.GetEnv("API_BASE_URL", defaultBaseURL)),
		strings.TrimSpace(env.GetEnv("API_TOKEN", "")),
	)
}

// envelope is the {success, data | error} wrapper every endpoint uses.
// Some endpoints name their payload (gateways, payment) instead of data.
type envelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data"`
	Gateways   json.RawMessage `json:"gateways"`
	Payment    json.RawMessage `json:"payment"`
	Error      json.RawMessage `json:"error"`
	Message    string          `json:"message"`
	Pagination *Pagination     `json:"pagination"`
	Meta       *Pagination     `json:"meta"`
}

func (e *envelope) errorMessage() string {
	if len(e.Error) > 0 && string(e.Error) != "null" {
		var s string
		if json.Unmarshal(e.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(e.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return e.Message
}

func (e *envelope) pagination() *Pagination {
	if e.Pagination != nil {
		return e.Pagination
	}
	return e.Meta
}

type request struct {
	endpoint   string
	method     string
	path       string
	query      url.Values
	body       interface{}
	customerID string
}

// do performs the call and returns the decoded envelope. Non-2xx and
// success:false become *APIError, everything that prevents reading a
// response becomes *TransportError.
func (c *Client) do(ctx context.Context, r request) (*envelope, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "backend "+r.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("url.path", r.path),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := c.roundTrip(ctx, r)
	metrics.APIRequestDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.APIRequests.WithLabelValues(r.endpoint, "ok").Inc()
	case IsTransport(err):
		metrics.APIRequests.WithLabelValues(r.endpoint, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
	default:
		metrics.APIRequests.WithLabelValues(r.endpoint, "business_error").Inc()
		span.SetStatus(codes.Error, "business error")
	}
	return out, err
}

func (c *Client) roundTrip(ctx context.Context, r request) (*envelope, error) {
	u := c.BaseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", r.endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if r.customerID != "" {
		req.Header.Set(CustomerHeader, r.customerID)
	}
	telemetry.Inject(ctx, req.Header)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: r.endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Endpoint: r.endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	var payload envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			if !ok {
				return nil, &APIError{Endpoint: r.endpoint, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return nil, &TransportError{Endpoint: r.endpoint, Err: fmt.Errorf("decode body: %w", err)}
		}
	}

	if !ok || (payload.Success != nil && !*payload.Success) {
		msg := payload.errorMessage()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Endpoint: r.endpoint, StatusCode: resp.StatusCode, Message: msg}
	}
	return &payload, nil
}

// decodeField unmarshals one payload field of a successful envelope.
func decodeField(endpoint string, raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return &APIError{Endpoint: endpoint, StatusCode: http.StatusNotFound, Message: "no data in response"}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return nil
}
