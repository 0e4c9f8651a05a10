package profile

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested profile or row does not exist.
var ErrNotFound = errors.New("profile not found")

// Repository persists profiles and their owned message/history rows. The
// storage shape is relational snake_case; the aggregate returned by Get maps
// it into the camelCase structure the views consume.
type Repository interface {
	Create(ctx context.Context, p Profile) error
	Get(ctx context.Context, id string) (Profile, error)
	ListByRole(ctx context.Context, role string) ([]Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, updates Updates) error
	Delete(ctx context.Context, id string) error

	AddHistory(ctx context.Context, userID string, item HistoryItem) (HistoryItem, error)
	UpdateHistory(ctx context.Context, userID, itemID string, item HistoryItem) error
	DeleteHistory(ctx context.Context, userID, itemID string) error

	AddMessage(ctx context.Context, userID string, msg Message) (Message, error)
	MarkMessagesRead(ctx context.Context, userID, senderRole string) error
}
