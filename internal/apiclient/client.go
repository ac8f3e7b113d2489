package apiclient

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
	"time"

	"github.com/zombor/billed/internal/bill"
)

// DefaultTimeout bounds every call to the bills API
const DefaultTimeout = 30 * time.Second

// Client talks to the bills API
type Client struct {
	baseURL  string
	client   *http.Client
	username string
	password string
}

// Option configures a Client
type Option func(*Client)

// WithBasicAuth sends credentials with every request
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// New creates a Client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bills returns the bill store of the user identified by email
func (c *Client) Bills(email string) *Bills {
	return &Bills{client: c, email: email}
}

// Bills implements bill.Store for one user
type Bills struct {
	client *Client
	email  string
}

var _ bill.Store = (*Bills)(nil)

// List fetches the user's bills
func (b *Bills) List(ctx context.Context) ([]bill.Bill, error) {
	query := url.Values{"email": {b.email}}
	req, err := b.client.newRequest(ctx, http.MethodGet, "/bills?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	bills := make([]bill.Bill, 0)
	if err := b.client.do(req, &bills); err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	return bills, nil
}

// Create uploads the receipt as a multipart form with file and email fields
func (b *Bills) Create(ctx context.Context, upload bill.Upload) (bill.Uploaded, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", upload.Filename)
	if err != nil {
		return bill.Uploaded{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return bill.Uploaded{}, fmt.Errorf("writing form file: %w", err)
	}
	if err := writer.WriteField("email", upload.Email); err != nil {
		return bill.Uploaded{}, fmt.Errorf("writing email field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return bill.Uploaded{}, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := b.client.newRequest(ctx, http.MethodPost, "/bills", body)
	if err != nil {
		return bill.Uploaded{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var uploaded bill.Uploaded
	if err := b.client.do(req, &uploaded); err != nil {
		return bill.Uploaded{}, fmt.Errorf("creating bill: %w", err)
	}
	return uploaded, nil
}

// Update replaces the bill stored under id
func (b *Bills) Update(ctx context.Context, id string, bl bill.Bill) error {
	data, err := json.Marshal(bl)
	if err != nil {
		return fmt.Errorf("marshaling bill: %w", err)
	}

	req, err := b.client.newRequest(ctx, http.MethodPatch, "/bills/"+url.PathEscape(id), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := b.client.do(req, nil); err != nil {
		return fmt.Errorf("updating bill %s: %w", id, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a JSON response into out when out is not nil.
// Non-2xx responses become a *bill.StoreError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling bills API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &bill.StoreError{
			Code:    resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
