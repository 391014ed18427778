// Package graphql talks to the vehicle, customer and order services over
// GraphQL and validates what comes back before it reaches pricing code.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/logger"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/metrics"
)

const defaultTimeout = 10 * time.Second

// Options configures a service client.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Metrics    *metrics.UpstreamMetrics
	Logger     *logger.Logger
}

// Client runs GraphQL operations against one upstream service. Calls are
// never retried; a failure is reported to the caller as a dependency error.
type Client struct {
	service    string
	endpoint   string
	gql        *graphql.Client
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.UpstreamMetrics
	logg       *logger.Logger
}

// NewClient returns a client for the service at endpoint.
func NewClient(service, endpoint string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		service:    service,
		endpoint:   endpoint,
		gql:        graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		httpClient: httpClient,
		timeout:    timeout,
		metrics:    opts.Metrics,
		logg:       logg,
	}
}

// upload is a file attached to a multipart request.
type upload struct {
	field    string
	filename string
	body     io.Reader
}

// call describes one GraphQL operation.
type call struct {
	operation string
	query     string
	vars      map[string]any
	token     string
	file      *upload
}

func (c *Client) run(ctx context.Context, op call, resp any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var err error
	if op.file != nil {
		err = c.upload(ctx, op, resp)
	} else {
		req := graphql.NewRequest(op.query)
		for k, v := range op.vars {
			req.Var(k, v)
		}
		if op.token != "" {
			req.Header.Set("Authorization", "Bearer "+op.token)
		}
		err = c.gql.Run(ctx, req, resp)
	}
	c.metrics.Observe(c.service, op.operation, err, time.Since(start))
	if err != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"service":   c.service,
			"operation": op.operation,
		})
		c.logg.Error(logCtx, "upstream.error", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s service unavailable", c.service)).
			WithDetails(map[string]any{"service": c.service, "operation": op.operation})
	}
	return nil
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// upload sends op as a GraphQL multipart request: an operations field whose
// file variable is null, a map field pointing part "0" at that variable, and
// the file itself as part "0".
func (c *Client) upload(ctx context.Context, op call, resp any) error {
	body, contentType, err := encodeUpload(op)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json; charset=utf-8")
	if op.token != "" {
		req.Header.Set("Authorization", "Bearer "+op.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var gr graphqlResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("graphql: server returned a non-200 status code: %d", res.StatusCode)
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return fmt.Errorf("graphql: %s", gr.Errors[0].Message)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql: server returned a non-200 status code: %d", res.StatusCode)
	}
	if resp == nil || len(gr.Data) == 0 {
		return nil
	}
	return json.Unmarshal(gr.Data, resp)
}

func encodeUpload(op call) (io.Reader, string, error) {
	vars := make(map[string]any, len(op.vars)+1)
	for k, v := range op.vars {
		vars[k] = v
	}
	vars[op.file.field] = nil

	operations, err := json.Marshal(map[string]any{"query": op.query, "variables": vars})
	if err != nil {
		return nil, "", fmt.Errorf("encoding operations: %w", err)
	}
	fileMap, err := json.Marshal(map[string][]string{"0": {"variables." + op.file.field}})
	if err != nil {
		return nil, "", fmt.Errorf("encoding map: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("operations", string(operations)); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("map", string(fileMap)); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("0", op.file.filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, op.file.body); err != nil {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) warnInvalid(ctx context.Context, operation, id string, err error) {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"service":   c.service,
		"operation": operation,
		"record_id": id,
		"error":     err.Error(),
	})
	c.logg.Warn(logCtx, "upstream.invalid_record")
}

func invalidRecord(service, kind string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s service returned an invalid %s", service, kind))
}
