package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// User is the server's representation of the signed-in account, as carried
// by the current-user, login, register, and refresh payloads.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// AuthPayload is the data member of a successful login/register/refresh
// envelope: the user plus the issued credential.
type AuthPayload struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// LoginRequest is the POST /login body.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// RegisterRequest is the POST /register body.
type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

// PermissionPayload is the data member of GET /permissions. Fields are
// decoded as real booleans; anything absent stays false.
type PermissionPayload struct {
	CanView                 bool `json:"canView"`
	CanAdd                  bool `json:"canAdd"`
	CanEdit                 bool `json:"canEdit"`
	CanDelete               bool `json:"canDelete"`
	CanManageUsers          bool `json:"canManageUsers"`
	CanViewBorrowingHistory bool `json:"canViewBorrowingHistory"`
	CanBorrow               bool `json:"canBorrow"`
	CanReturnBooks          bool `json:"canReturnBooks"`
	CanViewAllBorrowings    bool `json:"canViewAllBorrowings"`
}

// TokenSource supplies the bearer credential attached to authenticated
// requests. An empty string means "send no Authorization header" (cookie
// auth may still apply).
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Client talks to one Shelf server. Construct with NewClient; the zero
// value is not usable.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client (tests, custom
// transports). The configured timeout is applied to it.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTokenSource attaches a bearer-credential supplier.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// NewClient creates a client for the given base URL. timeout bounds every
// request including body read; the permission endpoints rely on it to turn
// a hung server into a fail-closed transport error.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}

	// The permission endpoints authenticate by cookie; keep a jar so the
	// session cookie set at login travels with them.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout, Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Timeout = timeout
	if c.http.Jar == nil {
		c.http.Jar = jar
	}

	return c, nil
}

// CurrentUser fetches the account bound to the stored credential.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	data, err := c.get(ctx, "/auth/current-user", nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &u, nil
}

// Login exchanges credentials for a session. A success=false envelope
// surfaces as *RemoteError carrying the server's message.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthPayload, error) {
	return c.postAuth(ctx, "/auth/login", req)
}

// Register creates an account and, like Login, returns the issued session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthPayload, error) {
	return c.postAuth(ctx, "/auth/register", req)
}

// Logout tells the server to invalidate the session. Callers treat this as
// best-effort; local state is cleared regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.post(ctx, "/auth/logout", nil)
	return err
}

// RefreshToken rotates the credential using the refresh token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthPayload, error) {
	return c.postAuth(ctx, "/auth/refresh", map[string]string{"refreshToken": refreshToken})
}

// Permissions performs the bulk query for the current session's full
// permission set.
func (c *Client) Permissions(ctx context.Context) (*PermissionPayload, error) {
	data, err := c.get(ctx, "/auth/permissions", nil)
	if err != nil {
		return nil, err
	}

	var p PermissionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &p, nil
}

// VerifyAccess performs the point query for one resource/action pair,
// optionally scoped to a resource instance. Only an exact
// {success:true, data:{hasAccess:true}} response yields true.
func (c *Client) VerifyAccess(ctx context.Context, resource, action, resourceID string) (bool, error) {
	if resource == "" || action == "" {
		return false, errors.New("resource and action required")
	}

	q := url.Values{}
	q.Set("resource", resource)
	q.Set("action", action)
	if resourceID != "" {
		q.Set("resourceId", resourceID)
	}

	data, err := c.get(ctx, "/auth/verify-access", q)
	if err != nil {
		return false, err
	}

	var body struct {
		HasAccess bool `json:"hasAccess"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return body.HasAccess, nil
}

func (c *Client) postAuth(ctx context.Context, path string, body any) (*AuthPayload, error) {
	data, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	var payload AuthPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.AccessToken(req.Context()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(resp)
}
