package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/sambabib/versioneye-check/pkg/config"
	"github.com/sambabib/versioneye-check/pkg/keystore"
	"github.com/sambabib/versioneye-check/pkg/logger"
	"github.com/sambabib/versioneye-check/pkg/report"
)

const projectsEndpoint = "api/v2/projects"

// WarnCallback receives non-fatal problems found while building a request.
type WarnCallback func(message string)

type warnKey struct{}

// WithWarnCallback returns a context whose Submit calls report warnings to cb.
func WithWarnCallback(ctx context.Context, cb WarnCallback) context.Context {
	return context.WithValue(ctx, warnKey{}, cb)
}

func warn(ctx context.Context, message string) {
	logger.Warnf("%s", message)
	if cb, ok := ctx.Value(warnKey{}).(WarnCallback); ok && cb != nil {
		cb(message)
	}
}

// Client uploads manifests to the VersionEye projects API
type Client struct {
	HTTPClient *http.Client
}

// New creates a client on the default transport, without a timeout.
func New() *Client {
	return &Client{HTTPClient: http.DefaultClient}
}

// TransportError wraps a failure to reach the server.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to reach VersionEye: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-2xx answer from the server.
type RemoteError struct {
	StatusCode int
	Status     string
	Message    string // "error" field of the body, if any
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected response from VersionEye: %s", e.Message)
	}
	return fmt.Sprintf("unexpected response from VersionEye: %s", e.Status)
}

// Submit uploads the manifest and returns the classified report. A known project id
// updates that project, otherwise a new project is created.
func (c *Client) Submit(ctx context.Context, name string, manifest []byte, creds keystore.Credentials, cfg *config.Config) (*report.Report, error) {
	endpoint := projectsEndpoint
	filePart := "upload"
	if creds.ProjectID != "" {
		endpoint = projectsEndpoint + "/" + url.PathEscape(creds.ProjectID)
		filePart = "project_file"
	}

	body, contentType, err := buildForm(ctx, name, filePart, manifest, cfg)
	if err != nil {
		return nil, err
	}

	target, err := buildURL(cfg.BaseURL, endpoint, creds.APIKey)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	logger.Debugf("VersionEye: POST %s%s (%s, %d bytes)", cfg.BaseURL, endpoint, filePart, len(manifest))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(data),
		}
	}

	raw, err := report.Parse(data)
	if err != nil {
		return nil, err
	}

	r := report.Classify(raw)
	if r.ProjectID == "" {
		r.ProjectID = creds.ProjectID
	}
	logger.Debugf("VersionEye: project %s, %d dependencies", r.ProjectID, r.DepCount)
	return r, nil
}

// buildForm writes the multipart body. A team without an organisation is dropped with a warning.
func buildForm(ctx context.Context, name, filePart string, manifest []byte, cfg *config.Config) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", name); err != nil {
		return nil, "", fmt.Errorf("failed to build request body: %w", err)
	}

	part, err := w.CreateFormFile(filePart, name+".pom")
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request body: %w", err)
	}
	if _, err := part.Write(manifest); err != nil {
		return nil, "", fmt.Errorf("failed to build request body: %w", err)
	}

	fields := [][2]string{}
	hasOrg := strings.TrimSpace(cfg.Org) != ""
	if hasOrg {
		fields = append(fields, [2]string{"orga_name", cfg.Org})
	}
	if strings.TrimSpace(cfg.Team) != "" {
		if hasOrg {
			fields = append(fields, [2]string{"team_name", cfg.Team})
		} else {
			warn(ctx, "You must provide a VersionEye project organisation in order to specify a team.")
		}
	}

	visibility := string(config.VisibilityPublic)
	if cfg.Visibility == config.VisibilityPrivate {
		visibility = string(config.VisibilityPrivate)
	}
	fields = append(fields, [2]string{"visibility", visibility})

	if cfg.Temp {
		fields = append(fields, [2]string{"temp", "true"})
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to build request body: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to build request body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func buildURL(baseURL, endpoint, apiKey string) (string, error) {
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	q := u.Query()
	q.Set("api_key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// errorMessage extracts the "error" field of a JSON error body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return strings.TrimSpace(e.Error)
}
