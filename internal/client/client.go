/*
Package client talks to the phonebook HTTP API.

Client implements form.AuthAPI and form.ContactsAPI, so the same form controllers that run
on the server can run in a terminal against a remote server. API errors come back as
*errs.CustomError values carrying the server's code, message and field messages.
*/
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
	"sync"
	"time"

	"phonebook/internal/app/avatar"
	"phonebook/internal/app/contact"
	"phonebook/internal/app/user"
	"phonebook/internal/pkg/errs"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 15 * time.Second

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client signed in.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the bearer token, or "" when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, name, email, password string) (user.Session, error) {
	var session user.Session
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", body, &session); err != nil {
		return user.Session{}, err
	}

	c.SetToken(session.Token)
	return session, nil
}

// Login signs in and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (user.Session, error) {
	var session user.Session
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &session); err != nil {
		return user.Session{}, err
	}

	c.SetToken(session.Token)
	return session, nil
}

// Logout tells the server and forgets the token, even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Current returns the signed-in user's profile.
func (c *Client) Current(ctx context.Context) (user.User, error) {
	var out struct {
		User user.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/current", nil, &out); err != nil {
		return user.User{}, err
	}
	return out.User, nil
}

// UploadAvatar sends a profile photo as multipart form data.
func (c *Client) UploadAvatar(ctx context.Context, filename string, photo io.Reader) (user.User, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("avatar", filename)
	if err != nil {
		return user.User{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return user.User{}, fmt.Errorf("read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return user.User{}, fmt.Errorf("close multipart body: %w", err)
	}

	var out struct {
		User user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/avatar", mw.FormDataContentType(), &body, &out); err != nil {
		return user.User{}, err
	}
	return out.User, nil
}

// ListContacts returns the signed-in user's contacts sorted by name.
func (c *Client) ListContacts(ctx context.Context) ([]contact.Contact, error) {
	var out struct {
		Contacts []contact.Contact `json:"contacts"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// AddContact implements form.ContactsAPI.
func (c *Client) AddContact(ctx context.Context, name, number string) (contact.Contact, error) {
	var out struct {
		Contact contact.Contact `json:"contact"`
	}
	body := map[string]string{"name": name, "number": number}
	if err := c.doJSON(ctx, http.MethodPost, "/api/contacts", body, &out); err != nil {
		return contact.Contact{}, err
	}
	return out.Contact, nil
}

func (c *Client) UpdateContact(ctx context.Context, id, name, number string) (contact.Contact, error) {
	var out struct {
		Contact contact.Contact `json:"contact"`
	}
	body := map[string]string{"name": name, "number": number}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/contacts/"+url.PathEscape(id), body, &out); err != nil {
		return contact.Contact{}, err
	}
	return out.Contact, nil
}

func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/contacts/"+url.PathEscape(id), nil, nil)
}

// Avatar asks the server for the placeholder avatar of name.
func (c *Client) Avatar(ctx context.Context, name string) (avatar.Spec, error) {
	var out struct {
		Avatar avatar.Spec `json:"avatar"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/avatar?name="+url.QueryEscape(name), nil, &out); err != nil {
		return avatar.Spec{}, err
	}
	out.Avatar.DisplayName = name
	return out.Avatar, nil
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	return c.do(ctx, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	r, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	r.Header.Set("Accept", "application/json")
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(r)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: unexpected response (HTTP %d): %w", method, path, res.StatusCode, err)
	}

	if env.Code != 0 {
		return apiError(res.StatusCode, env)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

func apiError(status int, env envelope) *errs.CustomError {
	customErr := &errs.CustomError{
		Code:    env.Code,
		Message: env.Message,
		Status:  status,
	}

	var data struct {
		Fields map[string]string `json:"fields"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &data) == nil && len(data.Fields) > 0 {
		customErr.Fields = data.Fields
	}
	return customErr
}
