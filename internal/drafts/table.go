package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"github.com/teemow/mailclerk/internal/tablestore"
)

// TableName is the table holding pending email drafts.
const TableName = "Emails"

// All drafts share one partition; the recipient address is a filtered
// property, not a key, matching the original storage schema.
const partitionKey = "email"

// Entity property names used in the drafts table.
const (
	propEmail   = "Email"
	propSubject = "Subject"
	propContent = "Content"
)

// TableStore is a Store backed by Azure Table Storage.
type TableStore struct {
	table *aztables.Client
}

// NewTableStore creates a draft store on top of the given table client.
// The table is expected to exist; use tablestore.Client.Table to create it.
func NewTableStore(table *aztables.Client) *TableStore {
	return &TableStore{table: table}
}

var _ Store = (*TableStore)(nil)

// Save implements Store. Any rows already stored for the address are removed
// first, so the one-draft-per-address invariant holds even though rows are
// keyed by generated ids.
func (s *TableStore) Save(ctx context.Context, draft Draft) error {
	if err := s.Delete(ctx, draft.Address); err != nil {
		return err
	}

	entity := aztables.EDMEntity{
		Entity: aztables.Entity{
			PartitionKey: partitionKey,
			RowKey:       uuid.NewString(),
		},
		Properties: map[string]any{
			propEmail:   draft.Address,
			propSubject: draft.Subject,
			propContent: draft.Body,
		},
	}
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if _, err := s.table.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	}); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *TableStore) Get(ctx context.Context, address string) (*Draft, error) {
	entities, err := s.query(ctx, address)
	if err != nil {
		return nil, err
	}
	for _, entity := range entities {
		if stringProp(entity.Properties, propEmail) == address {
			return &Draft{
				Address: address,
				Subject: stringProp(entity.Properties, propSubject),
				Body:    stringProp(entity.Properties, propContent),
			}, nil
		}
	}
	return nil, nil
}

// Delete implements Store. Every row stored for the address is removed.
func (s *TableStore) Delete(ctx context.Context, address string) error {
	entities, err := s.query(ctx, address)
	if err != nil {
		return err
	}
	for _, entity := range entities {
		if _, err := s.table.DeleteEntity(ctx, entity.PartitionKey, entity.RowKey, nil); err != nil {
			if tablestore.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to delete draft for %s: %w", address, err)
		}
	}
	return nil
}

func (s *TableStore) query(ctx context.Context, address string) ([]aztables.EDMEntity, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s' and %s eq '%s'",
		partitionKey, propEmail, escapeFilterValue(address))
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	var entities []aztables.EDMEntity
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if tablestore.IsNotFound(err) {
				return entities, nil
			}
			return nil, fmt.Errorf("failed to query drafts: %w", err)
		}
		for _, raw := range page.Entities {
			var entity aztables.EDMEntity
			if err := json.Unmarshal(raw, &entity); err != nil {
				return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
			}
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

func stringProp(props map[string]any, name string) string {
	if v, ok := props[name].(string); ok {
		return v
	}
	return ""
}

func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
