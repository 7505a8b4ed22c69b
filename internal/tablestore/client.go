package tablestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// Error codes returned by the table service that callers need to distinguish.
const (
	codeTableAlreadyExists  = "TableAlreadyExists"
	codeEntityAlreadyExists = "EntityAlreadyExists"
	codeResourceNotFound    = "ResourceNotFound"
	codeEntityNotFound      = "EntityNotFound"
)

// Client provides access to the table storage account backing mailclerk.
type Client struct {
	svc *aztables.ServiceClient
}

// NewClient creates a table storage client from an Azure storage connection string.
func NewClient(connectionString string) (*Client, error) {
	svc, err := aztables.NewServiceClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Table returns a client for the named table, creating the table if it does
// not exist yet. Creation is idempotent: an "already exists" answer from the
// service is not an error.
func (c *Client) Table(ctx context.Context, name string) (*aztables.Client, error) {
	table := c.svc.NewClient(name)
	if _, err := table.CreateTable(ctx, nil); err != nil && !IsAlreadyExists(err) {
		return nil, fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return table, nil
}

// IsAlreadyExists reports whether err is the table service telling us the
// table or entity we tried to create is already there.
func IsAlreadyExists(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.ErrorCode == codeTableAlreadyExists || respErr.ErrorCode == codeEntityAlreadyExists
}

// IsConflict reports whether err means an entity with the same keys already
// exists. Used by optimistic insert-if-absent writers.
func IsConflict(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.ErrorCode == codeEntityAlreadyExists
}

// IsNotFound reports whether err means the requested table or entity does not exist.
func IsNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.ErrorCode == codeResourceNotFound || respErr.ErrorCode == codeEntityNotFound
}
