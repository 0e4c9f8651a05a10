package profile

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRecord struct {
	profile  Profile
	messages []Message     // insertion order, oldest first
	history  []HistoryItem // insertion order, oldest first
}

type memoryRepository struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

// NewMemoryRepository builds an in-memory profile store for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{records: make(map[string]*memoryRecord)}
}

func (r *memoryRepository) Create(_ context.Context, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[p.ID]; exists {
		return errors.New("profile exists")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Messages = nil
	p.PaymentHistory = nil
	r.records[p.ID] = &memoryRecord{profile: p}
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return rec.aggregate(), nil
}

func (r *memoryRepository) ListByRole(_ context.Context, role string) ([]Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Profile
	for _, rec := range r.records {
		if rec.profile.Role == role {
			out = append(out, rec.aggregate())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memoryRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[id]
	return ok, nil
}

func (r *memoryRepository) Update(_ context.Context, id string, updates Updates) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	if updates.Alias != nil {
		rec.profile.Alias = *updates.Alias
	}
	if updates.PaymentStatus != nil {
		rec.profile.PaymentStatus = *updates.PaymentStatus
	}
	if updates.NextPaymentDate != nil {
		rec.profile.NextPaymentDate = *updates.NextPaymentDate
	}
	if updates.InternetSpeed != nil {
		rec.profile.InternetSpeed = *updates.InternetSpeed
	}
	if updates.WifiSSID != nil {
		rec.profile.WifiSSID = *updates.WifiSSID
	}
	if updates.WifiPass != nil {
		rec.profile.WifiPass = *updates.WifiPass
	}
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memoryRepository) AddHistory(_ context.Context, userID string, item HistoryItem) (HistoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return HistoryItem{}, ErrNotFound
	}
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now().UTC()
	rec.history = append(rec.history, item)
	return item, nil
}

func (r *memoryRepository) UpdateHistory(_ context.Context, userID, itemID string, item HistoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return ErrNotFound
	}
	for i := range rec.history {
		if rec.history[i].ID == itemID {
			item.ID = itemID
			item.CreatedAt = rec.history[i].CreatedAt
			rec.history[i] = item
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) DeleteHistory(_ context.Context, userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return ErrNotFound
	}
	for i := range rec.history {
		if rec.history[i].ID == itemID {
			rec.history = append(rec.history[:i], rec.history[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) AddMessage(_ context.Context, userID string, msg Message) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return Message{}, ErrNotFound
	}
	msg.ID = uuid.NewString()
	msg.Read = false
	msg.CreatedAt = time.Now().UTC()
	rec.messages = append(rec.messages, msg)
	return msg, nil
}

func (r *memoryRepository) MarkMessagesRead(_ context.Context, userID, senderRole string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return ErrNotFound
	}
	for i := range rec.messages {
		if rec.messages[i].From == senderRole {
			rec.messages[i].Read = true
		}
	}
	return nil
}

// aggregate snapshots the record into the shape Get returns: messages oldest
// first, history newest first. Callers must hold at least a read lock.
func (rec *memoryRecord) aggregate() Profile {
	p := rec.profile
	p.Messages = make([]Message, len(rec.messages))
	copy(p.Messages, rec.messages)
	p.PaymentHistory = make([]HistoryItem, 0, len(rec.history))
	for i := len(rec.history) - 1; i >= 0; i-- {
		p.PaymentHistory = append(p.PaymentHistory, rec.history[i])
	}
	return p
}
