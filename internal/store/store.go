package store

import (
	"context"

	"github.com/flowternity/facility-assistant/internal/model"
)

// Store defines the persistence interface for the aggregation pipeline
// and the chat path. Fragments and conversation turns are append-only;
// source statuses are upsert-in-place, one row per source.
type Store interface {
	// Fragments
	AppendFragment(ctx context.Context, f model.Fragment) error
	ListActiveFragments(ctx context.Context) ([]model.Fragment, error)

	// Conversation turns
	AppendTurn(ctx context.Context, turn model.ConversationTurn) error
	ListTurnsBySession(ctx context.Context, sessionID string) ([]model.ConversationTurn, error)
	ListAllTurns(ctx context.Context) ([]model.ConversationTurn, error)

	// Source statuses
	UpsertStatus(ctx context.Context, status model.SourceStatus) error
	SnapshotStatuses(ctx context.Context) (map[model.Source]model.SourceStatus, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
