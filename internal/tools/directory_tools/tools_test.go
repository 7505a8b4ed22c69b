package directory_tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mailclerk/internal/graph"
)

type fakeDirectory struct {
	users []graph.User
	err   error
	query string
}

func (d *fakeDirectory) SearchUsersByPrefix(_ context.Context, fragment string) ([]graph.User, error) {
	d.query = fragment
	return d.users, d.err
}

func TestLookupReturnsAddressesInServiceOrder(t *testing.T) {
	directory := &fakeDirectory{users: []graph.User{
		{DisplayName: "John Doe", Mail: "john@x.com"},
		{DisplayName: "Jolene Sky", Mail: "jolene@x.com"},
	}}
	tool := NewLookupTool(directory, nil)

	result, err := tool.Invoke(context.Background(), json.RawMessage(`{"name":"Jo"}`))
	require.NoError(t, err)
	assert.Equal(t, "Jo", directory.query)

	var addresses []string
	require.NoError(t, json.Unmarshal([]byte(result), &addresses))
	assert.Equal(t, []string{"john@x.com", "jolene@x.com"}, addresses)
}

func TestLookupNoMatches(t *testing.T) {
	tool := NewLookupTool(&fakeDirectory{}, nil)

	result, err := tool.Invoke(context.Background(), json.RawMessage(`{"name":"Zz"}`))
	require.NoError(t, err)
	assert.Equal(t, NoMatchesSentinel, result)
}

func TestLookupDirectoryFailureDegradesToEmpty(t *testing.T) {
	tool := NewLookupTool(&fakeDirectory{err: errors.New("graph is down")}, nil)

	result, err := tool.Invoke(context.Background(), json.RawMessage(`{"name":"Jo"}`))
	require.NoError(t, err)
	assert.Equal(t, NoMatchesSentinel, result)
}

func TestLookupRejectsMalformedArguments(t *testing.T) {
	tool := NewLookupTool(&fakeDirectory{}, nil)

	_, err := tool.Invoke(context.Background(), json.RawMessage(`{"name":`))
	require.Error(t, err)
}

func TestToolContract(t *testing.T) {
	tool := NewLookupTool(&fakeDirectory{}, nil)

	assert.Equal(t, "get_email_address", tool.Name())
	assert.NotEmpty(t, tool.Description())

	params := tool.Parameters()
	assert.Contains(t, params.Properties, "name")
	assert.Equal(t, []string{"name"}, params.Required)
}
