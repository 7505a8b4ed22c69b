package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/teemow/mailclerk/internal/tablestore"
)

// TableName is the table holding conversation history.
const TableName = "ChatHistory"

// Entity property names used in the history table.
const (
	propRole    = "Role"
	propMessage = "Message"
)

// maxAppendAttempts bounds the insert-if-absent retry loop when concurrent
// appenders race for the same sequence number.
const maxAppendAttempts = 16

// TableStore is a Store backed by Azure Table Storage. The partition key is
// the conversation id, the row key is the zero-padded sequence number so
// lexical row order matches numeric turn order.
type TableStore struct {
	table *aztables.Client
}

// NewTableStore creates a history store on top of the given table client.
// The table is expected to exist; use tablestore.Client.Table to create it.
func NewTableStore(table *aztables.Client) *TableStore {
	return &TableStore{table: table}
}

var _ Store = (*TableStore)(nil)

func rowKey(sequence int) string {
	return fmt.Sprintf("%012d", sequence)
}

// Append implements Store. It reads the current turn count and inserts the
// new turn with if-absent semantics; when a concurrent appender claimed the
// same sequence first, the insert fails with a conflict and we re-read and
// retry with the next free number.
func (s *TableStore) Append(ctx context.Context, conversationID string, role Role, text string) (Turn, error) {
	turns, err := s.Read(ctx, conversationID)
	if err != nil {
		return Turn{}, err
	}
	sequence := len(turns)

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		entity := aztables.EDMEntity{
			Entity: aztables.Entity{
				PartitionKey: conversationID,
				RowKey:       rowKey(sequence),
			},
			Properties: map[string]any{
				propRole:    string(role),
				propMessage: text,
			},
		}
		payload, err := json.Marshal(entity)
		if err != nil {
			return Turn{}, fmt.Errorf("failed to marshal history turn: %w", err)
		}

		_, err = s.table.AddEntity(ctx, payload, nil)
		if err == nil {
			return Turn{
				ConversationID: conversationID,
				Sequence:       sequence,
				Role:           role,
				Text:           text,
			}, nil
		}
		if !tablestore.IsConflict(err) {
			return Turn{}, fmt.Errorf("failed to append history turn: %w", err)
		}

		// Lost the race; find the next free sequence number.
		turns, err = s.Read(ctx, conversationID)
		if err != nil {
			return Turn{}, err
		}
		sequence = len(turns)
	}
	return Turn{}, fmt.Errorf("failed to append history turn for %s: retries exhausted", conversationID)
}

// Read implements Store.
func (s *TableStore) Read(ctx context.Context, conversationID string) ([]Turn, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s'", escapeFilterValue(conversationID))
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	turns := []Turn{}
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if tablestore.IsNotFound(err) {
				return turns, nil
			}
			return nil, fmt.Errorf("failed to read history for %s: %w", conversationID, err)
		}
		for _, raw := range page.Entities {
			var entity aztables.EDMEntity
			if err := json.Unmarshal(raw, &entity); err != nil {
				return nil, fmt.Errorf("failed to unmarshal history turn: %w", err)
			}
			sequence, err := strconv.Atoi(entity.RowKey)
			if err != nil {
				return nil, fmt.Errorf("history row key %q is not a sequence number: %w", entity.RowKey, err)
			}
			// ParseRole keeps unknown values as-is; replay decides what to
			// do with them.
			role, _ := ParseRole(stringProp(entity.Properties, propRole))
			turns = append(turns, Turn{
				ConversationID: conversationID,
				Sequence:       sequence,
				Role:           role,
				Text:           stringProp(entity.Properties, propMessage),
			})
		}
	}

	sort.Slice(turns, func(i, j int) bool { return turns[i].Sequence < turns[j].Sequence })
	return turns, nil
}

func stringProp(props map[string]any, name string) string {
	if v, ok := props[name].(string); ok {
		return v
	}
	return ""
}

// escapeFilterValue doubles single quotes so values are safe inside an OData
// filter literal.
func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
