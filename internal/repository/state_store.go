package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

// StateStore persists the whole application state as one JSON blob.
type StateStore struct {
	blobs  BlobStore
	key    string
	logger *zap.Logger
}

func NewStateStore(blobs BlobStore, key string, logger *zap.Logger) *StateStore {
	return &StateStore{blobs: blobs, key: key, logger: logger}
}

// Load returns the stored state, or a fresh empty state when nothing was
// saved yet or the stored value cannot be decoded.
func (s *StateStore) Load(ctx context.Context) (*session.State, error) {
	raw, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return session.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	state := session.NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		s.logger.Warn("stored state is malformed, starting empty",
			zap.String("key", s.key),
			zap.Int("bytes", len(raw)),
			zap.Error(err),
		)
		return session.NewState(), nil
	}
	state.Normalize()
	return state, nil
}

// Save overwrites the stored blob with state.
func (s *StateStore) Save(ctx context.Context, state *session.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *StateStore) Close() error {
	return s.blobs.Close()
}
