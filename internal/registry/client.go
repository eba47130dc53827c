// Package registry talks to a Confluent-compatible schema registry: it looks up and
// registers Avro schemas, frames payloads in the registry wire format and provisions
// the schemas shipped with the service.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	apperrors "github.com/allisson/orderflow/internal/errors"
)

// ContentType is the media type the registry expects on schema writes.
const ContentType = "application/vnd.schemaregistry.v1+json"

// SchemaTypeAvro is the only schema type this service registers.
const SchemaTypeAvro = "AVRO"

// ErrSchemaConflict is returned when the registry answers a registration with 409.
var ErrSchemaConflict = apperrors.Wrap(apperrors.ErrConflict, "schema already registered")

// Schema is a registered schema version.
type Schema struct {
	Subject string `json:"subject"`
	Version int    `json:"version"`
	ID      int    `json:"id"`
	Schema  string `json:"schema"`
}

type registerRequest struct {
	Schema     string `json:"schema"`
	SchemaType string `json:"schemaType"`
}

type registerResponse struct {
	ID int `json:"id"`
}

type schemaByIDResponse struct {
	Schema string `json:"schema"`
}

// Client is a schema registry HTTP client. Transient failures (connection errors and
// 5xx responses) are retried by go-retryablehttp.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates a Client for baseURL. retryMax bounds the per-request retries.
func NewClient(baseURL string, retryMax int, logger *slog.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = retryMax
	httpClient.RetryWaitMin = 100 * time.Millisecond
	httpClient.RetryWaitMax = 2 * time.Second
	httpClient.HTTPClient.Timeout = 10 * time.Second
	// Hand the last response back once retries run out so its status and body reach the caller.
	httpClient.ErrorHandler = func(resp *http.Response, err error, _ int) (*http.Response, error) {
		if resp != nil {
			return resp, nil
		}
		return nil, err
	}
	httpClient.Logger = nil
	if logger != nil {
		httpClient.Logger = logger
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// Subjects lists the registered subjects. It doubles as the readiness probe.
func (c *Client) Subjects(ctx context.Context) ([]string, error) {
	var subjects []string
	if err := c.do(ctx, http.MethodGet, "/subjects", nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// Register registers schema under subject and returns its id. A 409 answer yields
// ErrSchemaConflict.
func (c *Client) Register(ctx context.Context, subject, schema string) (int, error) {
	body, err := json.Marshal(registerRequest{Schema: schema, SchemaType: SchemaTypeAvro})
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal schema registration")
	}

	var resp registerResponse
	path := fmt.Sprintf("/subjects/%s/versions", url.PathEscape(subject))
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// LatestSchema returns the latest registered version of subject.
func (c *Client) LatestSchema(ctx context.Context, subject string) (*Schema, error) {
	var schema Schema
	path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject))
	if err := c.do(ctx, http.MethodGet, path, nil, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// SchemaByID returns the schema text registered under id.
func (c *Client) SchemaByID(ctx context.Context, id int) (string, error) {
	var resp schemaByIDResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schemas/ids/%d", id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Schema, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reqBody any
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperrors.Wrap(err, "failed to build registry request")
	}
	req.Header.Set("Accept", ContentType)
	if body != nil {
		req.Header.Set("Content-Type", ContentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUnavailable, "schema registry %s %s: %v", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, "failed to read registry response")
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Wrapf(ErrSchemaConflict, "%s", bytes.TrimSpace(payload))
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.Wrapf(apperrors.ErrNotFound, "schema registry %s %s: %s", method, path, bytes.TrimSpace(payload))
	case resp.StatusCode >= http.StatusInternalServerError:
		return apperrors.Wrapf(
			apperrors.ErrUnavailable,
			"schema registry %s %s returned %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(payload),
		)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("schema registry %s %s returned %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(payload))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.Wrap(err, "failed to decode registry response")
	}
	return nil
}
