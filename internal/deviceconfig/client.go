package deviceconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/muurk/ne101/internal/logging"
	"github.com/muurk/ne101/internal/version"
)

const (
	// DefaultHost is the camera's address on its own hotspot
	DefaultHost = "192.168.1.1"

	// DefaultPort is the camera's configuration server port
	DefaultPort = 80

	// DefaultTimeout is the default HTTP request timeout. Zero means a request
	// waits until its context ends.
	DefaultTimeout time.Duration = 0

	// FileNameHeader carries the original file name of an octet-stream upload
	FileNameHeader = "X-File-Name"
)

// Gateway is the single logical channel to a camera. Implementations never
// have two requests in flight at once; a call blocks until the one before it
// has resolved.
type Gateway interface {
	// Read GETs a parameter group and decodes it into out.
	Read(ctx context.Context, ep Endpoint, out any) error
	// Write POSTs payload as JSON. A nil payload sends an empty object.
	Write(ctx context.Context, ep Endpoint, payload any) (*Ack, error)
	// Upload POSTs raw content as application/octet-stream. A non-empty
	// fileName is sent in the X-File-Name header.
	Upload(ctx context.Context, ep Endpoint, fileName string, content io.Reader) (*Ack, error)
	// UploadForm POSTs content as a multipart form file field.
	UploadForm(ctx context.Context, ep Endpoint, field, fileName string, content io.Reader) (*Ack, error)
}

// Client represents an HTTP client for communicating with an NE101 camera
type Client struct {
	// BaseURL is the base URL for the camera (e.g., "http://192.168.1.1")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// channel admits one request at a time
	channel *semaphore.Weighted
}

var _ Gateway = (*Client)(nil)

// NewClient creates a new camera client
// host: camera address (e.g., "192.168.1.1")
// port: HTTP port (typically 80)
func NewClient(host string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", host, port))
}

// NewClientWithURL creates a new client with a full base URL
// baseURL: Full base URL (e.g., "http://192.168.1.1:80")
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		channel:    semaphore.NewWeighted(1),
	}
}

// SetTimeout sets the HTTP request timeout. Zero waits forever.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Host returns the host part of BaseURL for error context.
func (c *Client) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL
	}
	return u.Hostname()
}

// Read GETs a parameter group and decodes it into out.
func (c *Client) Read(ctx context.Context, ep Endpoint, out any) error {
	return c.do(ctx, http.MethodGet, ep, "application/json", nil, nil, out)
}

// Write POSTs payload as JSON and decodes the acknowledgement.
func (c *Client) Write(ctx context.Context, ep Endpoint, payload any) (*Ack, error) {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewParseError("failed to encode request body", err)
	}

	var ack Ack
	if err := c.do(ctx, http.MethodPost, ep, "application/json", nil, bytes.NewReader(body), &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Upload POSTs raw content as application/octet-stream.
// A nil content sends an empty body, which is how credential slots are deleted.
func (c *Client) Upload(ctx context.Context, ep Endpoint, fileName string, content io.Reader) (*Ack, error) {
	header := http.Header{}
	if fileName != "" {
		header.Set(FileNameHeader, fileName)
	}
	if content == nil {
		content = http.NoBody
	}

	var ack Ack
	if err := c.do(ctx, http.MethodPost, ep, "application/octet-stream", header, content, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// UploadForm POSTs content as a single multipart form file field.
func (c *Client) UploadForm(ctx context.Context, ep Endpoint, field, fileName string, content io.Reader) (*Ack, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		return nil, NewParseError("failed to build multipart body", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, NewParseError("failed to read upload content", err)
	}
	if err := mw.Close(); err != nil {
		return nil, NewParseError("failed to build multipart body", err)
	}

	var ack Ack
	if err := c.do(ctx, http.MethodPost, ep, mw.FormDataContentType(), nil, &buf, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// do performs one request while holding the channel.
func (c *Client) do(ctx context.Context, method string, ep Endpoint, contentType string, header http.Header, body io.Reader, out any) error {
	if err := c.channel.Acquire(ctx, 1); err != nil {
		return NewNetworkError("cancelled while waiting for the device", err)
	}
	defer c.channel.Release(1)

	requestID := uuid.NewString()
	path := ep.Path()

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return NewNetworkError(fmt.Sprintf("failed to create %s request", method), err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range header {
		req.Header[k] = v
	}

	logging.LogRequest(requestID, method, path, req.ContentLength)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogRequestFailed(requestID, path, err, time.Since(start))
		devErr := ClassifyNetworkError(err, c.Host())
		devErr.Message = fmt.Sprintf("%s %s failed: %s", method, ep, devErr.Message)
		devErr.Endpoint = ep
		return devErr
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	logging.LogResponse(requestID, path, resp.StatusCode, time.Since(start))
	if err != nil {
		devErr := NewNetworkError("failed to read response body", err)
		devErr.Endpoint = ep
		return devErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail map[string]any
		_ = decodeJSON(data, &detail)
		devErr := NewHTTPError(resp.StatusCode, fmt.Sprintf("%s answered status %d", ep, resp.StatusCode), detail)
		devErr.Endpoint = ep
		devErr.Host = c.Host()
		return devErr
	}

	if out == nil {
		return nil
	}
	if err := decodeJSON(data, out); err != nil {
		devErr := NewParseError(fmt.Sprintf("failed to parse %s response", ep), err)
		devErr.Endpoint = ep
		return devErr
	}
	return nil
}

// decodeJSON decodes the first JSON value in data. The firmware pads some
// responses with NUL bytes after the object, so trailing data is ignored.
func decodeJSON(data []byte, out any) error {
	data = bytes.TrimRight(data, "\x00\r\n\t ")
	if len(data) == 0 {
		return fmt.Errorf("empty response body")
	}
	return json.NewDecoder(bytes.NewReader(data)).Decode(out)
}
