package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftTTL is how long an untouched draft survives.
const DraftTTL = 24 * time.Hour

// DraftStore persists wizard drafts as JSON, keyed by kind, owner and id.
type DraftStore interface {
	Save(ctx context.Context, kind, uid, id string, draft any) error
	// Load returns ErrDraftNotFound when the draft is missing or expired.
	Load(ctx context.Context, kind, uid, id string, draft any) error
	Delete(ctx context.Context, kind, uid, id string) error
}

func draftKey(kind, uid, id string) string {
	return fmt.Sprintf("wizard:%s:%s:%s", kind, uid, id)
}

// RedisDraftStore keeps drafts in Redis so any API instance can continue a wizard.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: DraftTTL}
}

func (s *RedisDraftStore) Save(ctx context.Context, kind, uid, id string, draft any) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(kind, uid, id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft to Redis: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Load(ctx context.Context, kind, uid, id string, draft any) error {
	data, err := s.client.Get(ctx, draftKey(kind, uid, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrDraftNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get draft from Redis: %w", err)
	}
	if err := json.Unmarshal(data, draft); err != nil {
		return fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, kind, uid, id string) error {
	if err := s.client.Del(ctx, draftKey(kind, uid, id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from Redis: %w", err)
	}
	return nil
}

// MemoryDraftStore keeps drafts in process memory. It is used when no Redis
// server is configured.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]memoryDraft
	ttl    time.Duration
	now    func() time.Time
}

type memoryDraft struct {
	data    []byte
	expires time.Time
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]memoryDraft), ttl: DraftTTL, now: time.Now}
}

func (s *MemoryDraftStore) Save(_ context.Context, kind, uid, id string, draft any) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, d := range s.drafts {
		if now.After(d.expires) {
			delete(s.drafts, k)
		}
	}
	s.drafts[draftKey(kind, uid, id)] = memoryDraft{data: data, expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Load(_ context.Context, kind, uid, id string, draft any) error {
	s.mu.Lock()
	d, ok := s.drafts[draftKey(kind, uid, id)]
	s.mu.Unlock()
	if !ok || s.now().After(d.expires) {
		return ErrDraftNotFound
	}
	return json.Unmarshal(d.data, draft)
}

func (s *MemoryDraftStore) Delete(_ context.Context, kind, uid, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey(kind, uid, id))
	return nil
}
