package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticCredential satisfies azcore.TokenCredential with a fixed token.
type staticCredential struct {
	token string
}

func (c staticCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     c.token,
		ExpiresOn: time.Now().Add(time.Hour),
	}, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithCredential(staticCredential{token: "test-token"}, &Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
}

func TestSearchUsersByPrefix(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/users", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("$filter"), "startswith(displayName, 'Jo')")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]string{
				{"displayName": "John Doe", "mail": "john@x.com"},
				{"displayName": "Jolene Sky", "mail": "jolene@x.com"},
				{"displayName": "Amy", "mail": "amy@x.com"},
			},
		})
	})

	users, err := client.SearchUsersByPrefix(context.Background(), "Jo")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "john@x.com", users[0].Mail)
	assert.Equal(t, "jolene@x.com", users[1].Mail)
}

func TestSearchUsersByPrefixCaseInsensitive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]string{
				{"displayName": "john doe", "mail": "john@x.com"},
			},
		})
	})

	users, err := client.SearchUsersByPrefix(context.Background(), "JOHN")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "john@x.com", users[0].Mail)
}

func TestSearchUsersByPrefixSkipsEntriesWithoutMail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]string{
				{"displayName": "John Doe", "mail": ""},
				{"displayName": "John Roe", "mail": "roe@x.com"},
			},
		})
	})

	users, err := client.SearchUsersByPrefix(context.Background(), "John")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "roe@x.com", users[0].Mail)
}

func TestSearchUsersByPrefixServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.SearchUsersByPrefix(context.Background(), "Jo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory query failed")
}

func TestSendMail(t *testing.T) {
	var got sendMailRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/assistant@example.com/sendMail", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.SendMail(context.Background(), "assistant@example.com", Message{
		To:      "jolene@x.com",
		Subject: "Meeting",
		Body:    "See you at 10.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Meeting", got.Message.Subject)
	assert.Equal(t, "Text", got.Message.Body.ContentType)
	assert.Equal(t, "See you at 10.", got.Message.Body.Content)
	require.Len(t, got.Message.ToRecipients, 1)
	assert.Equal(t, "jolene@x.com", got.Message.ToRecipients[0].EmailAddress.Address)
}

func TestSendMailRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	err := client.SendMail(context.Background(), "assistant@example.com", Message{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sendMail failed")
}
