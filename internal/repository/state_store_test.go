package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/config"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/database"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

type memBlobs struct {
	data   map[string][]byte
	getErr error
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memBlobs) Put(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memBlobs) Close() error { return nil }

func openPebble(t *testing.T) *PebbleRepo {
	t.Helper()
	db, err := database.OpenPebble(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	return NewPebbleRepo(db)
}

func TestStateStore_PebbleRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore(openPebble(t), "campus_ai_chat", zap.NewNop())
	defer store.Close()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Chats)
	assert.Empty(t, empty.ActiveChatID)

	m := session.New(nil)
	id := m.CreateChat()
	_, err = m.AppendMessage(id, session.Message{Role: session.RoleUser, Text: "hello there"})
	require.NoError(t, err)
	m.Attach(session.PendingFile{Name: "a.png", ContentType: "image/png", Data: []byte{1, 2, 3}})

	want := m.Snapshot()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStateStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	blobs := &memBlobs{data: map[string][]byte{}}
	store := NewStateStore(blobs, "k", zap.NewNop())

	first := session.NewState()
	first.Chats = []*session.Chat{{ID: "chat_1", Title: "one", Messages: []*session.Message{}}}
	first.ActiveChatID = "chat_1"
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, session.NewState()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Chats)
}

func TestStateStore_MalformedFallsBackToEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	blobs := &memBlobs{data: map[string][]byte{"k": []byte(`{"chats": [`)}}
	store := NewStateStore(blobs, "k", zap.New(core))

	got, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, session.NewState(), got)
	assert.Equal(t, 1, logs.FilterMessage("stored state is malformed, starting empty").Len())
}

func TestStateStore_WrongShapeIsNormalized(t *testing.T) {
	raw := `{"chats":[{"id":"chat_1","title":"t","messages":null},null],"activeChatId":"chat_9"}`
	blobs := &memBlobs{data: map[string][]byte{"k": []byte(raw)}}
	store := NewStateStore(blobs, "k", zap.NewNop())

	got, err := store.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, got.Chats, 1)
	assert.Equal(t, "chat_1", got.ActiveChatID)
	assert.NotNil(t, got.Chats[0].Messages)
	assert.NotNil(t, got.AttachedFiles)
}

func TestStateStore_BackendErrorIsReturned(t *testing.T) {
	boom := errors.New("disk on fire")
	store := NewStateStore(&memBlobs{getErr: boom}, "k", zap.NewNop())

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPebbleRepo_NotFound(t *testing.T) {
	repo := openPebble(t)
	defer repo.Close()

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenBlobStore(t *testing.T) {
	cfg := &config.Config{StoreDriver: "pebble", StorePath: filepath.Join(t.TempDir(), "s")}
	blobs, err := OpenBlobStore(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, blobs.Close())

	_, err = OpenBlobStore(&config.Config{StoreDriver: "sqlite"}, zap.NewNop())
	assert.Error(t, err)
}
