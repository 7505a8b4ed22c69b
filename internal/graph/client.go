package graph

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

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// defaultTimeout bounds every outbound Graph call.
const defaultTimeout = 30 * time.Second

// DefaultScopes returns the fixed scope set for application access.
func DefaultScopes() []string {
	return []string{"https://graph.microsoft.com/.default"}
}

// Client calls the Microsoft Graph REST API with client-credential tokens.
type Client struct {
	cred       azcore.TokenCredential
	httpClient *http.Client
	baseURL    string
	scopes     []string
}

// Options customizes a Client. The zero value selects production defaults.
type Options struct {
	// BaseURL overrides the Graph endpoint, used by tests.
	BaseURL string

	// HTTPClient overrides the HTTP client, used by tests.
	HTTPClient *http.Client
}

// NewClient creates a Graph client that acquires tokens via the
// client-credential flow for the given application registration.
func NewClient(tenantID, clientID, clientSecret string, opts *Options) (*Client, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client credential: %w", err)
	}
	return NewClientWithCredential(cred, opts), nil
}

// NewClientWithCredential creates a Graph client with a caller-supplied
// credential. Tests use this with a static credential and an httptest server.
func NewClientWithCredential(cred azcore.TokenCredential, opts *Options) *Client {
	c := &Client{
		cred:       cred,
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		scopes:     DefaultScopes(),
	}
	if opts != nil {
		if opts.BaseURL != "" {
			c.baseURL = strings.TrimRight(opts.BaseURL, "/")
		}
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
	}
	return c
}

// token acquires a bearer token for the fixed Graph scope. The credential
// caches tokens internally, so one acquisition per call session is cheap.
func (c *Client) token(ctx context.Context) (string, error) {
	tok, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: c.scopes})
	if err != nil {
		return "", fmt.Errorf("failed to acquire graph token: %w", err)
	}
	return tok.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request failed: %w", err)
	}
	return resp, nil
}

// SearchUsersByPrefix queries the directory for users whose display name
// starts with the given fragment. Matching is case-insensitive; only users
// with a mail address are returned, in the order the service yields them.
// No pagination is followed: a single page is assumed sufficient.
func (c *Client) SearchUsersByPrefix(ctx context.Context, fragment string) ([]User, error) {
	filter := fmt.Sprintf("startswith(displayName, '%s')", strings.ReplaceAll(fragment, "'", "''"))
	path := "/users?$filter=" + url.QueryEscape(filter)

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory query failed: %s", resp.Status)
	}

	var list userList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	lower := strings.ToLower(fragment)
	var users []User
	for _, user := range list.Value {
		if user.DisplayName == "" || user.Mail == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(user.DisplayName), lower) {
			users = append(users, user)
		}
	}
	return users, nil
}

// SendMail submits a plain-text message on behalf of fromUser. Graph answers
// 202 Accepted on a confirmed send; any other status is an error.
func (c *Client) SendMail(ctx context.Context, fromUser string, msg Message) error {
	payload, err := json.Marshal(sendMailRequest{
		Message: sendMailMessage{
			Subject: msg.Subject,
			Body: itemBody{
				ContentType: "Text",
				Content:     msg.Body,
			},
			ToRecipients: []recipient{
				{EmailAddress: emailAddress{Address: msg.To}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMail payload: %w", err)
	}

	path := "/users/" + url.PathEscape(fromUser) + "/sendMail"
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMail failed: %s", resp.Status)
	}
	return nil
}
