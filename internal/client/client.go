// Package client is the chat controller. It owns the session model, persists
// every change, talks to the gateway and drives reply reveals, and tells
// listeners when the view must be repainted.
package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/format"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/gateway"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/models"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

var (
	ErrBusy         = errors.New("a reply is already in progress for this chat")
	ErrNoActiveChat = errors.New("no active chat")
	ErrNotOpen      = errors.New("client is not open")
)

const saveTimeout = 5 * time.Second

type Gateway interface {
	Chat(ctx context.Context, message string, history []models.HistoryEntry, files []session.PendingFile) string
}

type Store interface {
	Load(ctx context.Context) (*session.State, error)
	Save(ctx context.Context, state *session.State) error
}

type Revealer interface {
	Reveal(ctx context.Context, full string, tick func(partial string)) error
}

type EventType string

const (
	// EventRender carries a full state snapshot.
	EventRender EventType = "render"
	// EventReveal carries the partial text of one revealing message.
	EventReveal EventType = "reveal"
)

type Event struct {
	Type      EventType
	State     *session.State
	ChatID    string
	MessageID string
	Text      string
	HTML      string
}

type Listener func(Event)

type Client struct {
	store    Store
	gateway  Gateway
	revealer Revealer
	logger   *zap.Logger

	identityReply string
	modelOpts     []session.Option

	mu       sync.Mutex
	model    *session.Model
	inflight map[string]context.CancelFunc
	closed   bool
	// version numbers every snapshot taken for publishing. Guarded by mu.
	version uint64

	// publishMu orders saves and renders so an older snapshot never lands
	// after a newer one.
	publishMu       sync.Mutex
	savedVersion    uint64
	renderedVersion uint64

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int

	wg sync.WaitGroup
}

type Option func(*Client)

// WithIdentityReply enables the instant answer to "who made you" questions.
func WithIdentityReply(reply string) Option {
	return func(c *Client) {
		c.identityReply = reply
	}
}

// WithModelOptions is passed to the session model created by Open.
func WithModelOptions(opts ...session.Option) Option {
	return func(c *Client) {
		c.modelOpts = append(c.modelOpts, opts...)
	}
}

func New(store Store, gw Gateway, revealer Revealer, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		store:     store,
		gateway:   gw,
		revealer:  revealer,
		logger:    logger,
		inflight:  make(map[string]context.CancelFunc),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open loads the persisted state. A state without chats gets a fresh one.
func (c *Client) Open(ctx context.Context) error {
	state, err := c.store.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.model = session.New(state, c.modelOpts...)
	created := false
	if c.model.ChatCount() == 0 {
		c.model.CreateChat()
		created = true
	}
	snap, version := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap, version, created)
	return nil
}

// Close cancels every in-flight reply and waits for them to settle.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	for _, cancel := range c.inflight {
		cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// Subscribe registers fn for every event and returns a function removing it.
// Listeners run on the goroutine that changed the state and must not call
// mutating methods of the Client.
func (c *Client) Subscribe(fn Listener) func() {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Client) Snapshot() *session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		return session.NewState()
	}
	return c.model.Snapshot()
}

// Busy reports whether chatID has a reply in flight.
func (c *Client) Busy(chatID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[chatID]
	return ok
}

func (c *Client) CreateChat() (string, error) {
	var id string
	err := c.mutate(func(m *session.Model) bool {
		id = m.CreateChat()
		return true
	})
	return id, err
}

func (c *Client) SwitchChat(id string) error {
	return c.mutate(func(m *session.Model) bool {
		return m.SwitchChat(id)
	})
}

// DeleteChat removes the chat and stops any reply still revealing into it.
func (c *Client) DeleteChat(id string) error {
	return c.mutate(func(m *session.Model) bool {
		if cancel, ok := c.inflight[id]; ok {
			cancel()
		}
		return m.DeleteChat(id)
	})
}

func (c *Client) RenameChat(id, name string) error {
	return c.mutate(func(m *session.Model) bool {
		return m.RenameChat(id, name)
	})
}

func (c *Client) Attach(files ...session.PendingFile) error {
	return c.mutate(func(m *session.Model) bool {
		if len(files) == 0 {
			return false
		}
		m.Attach(files...)
		return true
	})
}

func (c *Client) RemoveAttachment(index int) error {
	return c.mutate(func(m *session.Model) bool {
		return m.RemoveAttachment(index)
	})
}

// mutate runs fn under the lock, then saves and repaints when fn reports a
// change.
func (c *Client) mutate(fn func(m *session.Model) bool) error {
	c.mu.Lock()
	if c.model == nil {
		c.mu.Unlock()
		return ErrNotOpen
	}
	if !fn(c.model) {
		c.mu.Unlock()
		return nil
	}
	snap, version := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap, version, true)
	return nil
}

// Send posts text and the pending attachments to the active chat. The user
// messages are appended before the gateway is called; the reply arrives in
// the background and done is closed once it has been revealed and saved.
// Sending nothing is a no-op that returns an already closed channel.
func (c *Client) Send(text string) (done <-chan struct{}, err error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if c.model == nil || c.closed {
		c.mu.Unlock()
		return nil, ErrNotOpen
	}
	if text == "" && len(c.model.Attachments()) == 0 {
		c.mu.Unlock()
		return closedChan(), nil
	}
	chatID := c.model.ActiveChatID()
	if chatID == "" {
		c.mu.Unlock()
		return nil, ErrNoActiveChat
	}
	if _, busy := c.inflight[chatID]; busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}

	chat, _ := c.model.Chat(chatID)
	history := gateway.BuildHistory(chat.Messages)

	files := c.model.TakeAttachments()
	c.appendUserMessages(chatID, text, files)

	if text != "" && c.identityReply != "" && IsIdentityQuestion(text) {
		c.model.AppendMessage(chatID, session.Message{Role: session.RoleAssistant, Text: c.identityReply})
		snap, version := c.snapshotLocked()
		c.mu.Unlock()

		c.publish(snap, version, true)
		return closedChan(), nil
	}

	ctx := c.reserve(chatID)
	snap, version := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap, version, true)
	return c.launch(ctx, chatID, func(ctx context.Context) string {
		return c.gateway.Chat(ctx, text, history, files)
	}), nil
}

// appendUserMessages adds the optimistic echo of a send: images first, then
// other files by name, then the text. Caller holds c.mu.
func (c *Client) appendUserMessages(chatID, text string, files []session.PendingFile) {
	var images, others []session.FileRef
	for _, f := range files {
		if f.IsImage() {
			images = append(images, f.Ref())
		} else {
			others = append(others, f.Ref())
		}
	}

	for _, refs := range [][]session.FileRef{images, others} {
		if len(refs) == 0 {
			continue
		}
		c.model.AppendMessage(chatID, session.Message{Role: session.RoleUser, Files: refs})
	}
	if text != "" {
		c.model.AppendMessage(chatID, session.Message{Role: session.RoleUser, Text: text})
	}
}

// Regenerate replaces an assistant reply in the active chat with a fresh one
// for the closest user message before it. The old reply is removed and the new
// one is appended at the end of the chat. Without a preceding user message
// nothing happens.
func (c *Client) Regenerate(messageID string) (done <-chan struct{}, err error) {
	c.mu.Lock()
	if c.model == nil || c.closed {
		c.mu.Unlock()
		return nil, ErrNotOpen
	}
	chatID := c.model.ActiveChatID()
	chat, ok := c.model.ActiveChat()
	if !ok {
		c.mu.Unlock()
		return nil, ErrNoActiveChat
	}

	botIndex := -1
	for i, m := range chat.Messages {
		if m.ID == messageID && m.Role == session.RoleAssistant {
			botIndex = i
			break
		}
	}
	userIndex := -1
	for i := botIndex - 1; i >= 0; i-- {
		if chat.Messages[i].Role == session.RoleUser {
			userIndex = i
			break
		}
	}
	if botIndex < 0 || userIndex < 0 {
		c.mu.Unlock()
		return closedChan(), nil
	}
	if _, busy := c.inflight[chatID]; busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}

	user := chat.Messages[userIndex]
	prior := make([]*session.Message, 0, botIndex)
	for i, m := range chat.Messages[:botIndex] {
		if i == userIndex && user.HasText() {
			continue
		}
		prior = append(prior, m)
	}
	history := gateway.BuildHistory(prior)
	text := strings.TrimSpace(user.Text)

	c.model.RemoveMessage(chatID, messageID)

	ctx := c.reserve(chatID)
	snap, version := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap, version, true)
	return c.launch(ctx, chatID, func(ctx context.Context) string {
		return c.gateway.Chat(ctx, text, history, nil)
	}), nil
}

// reserve marks chatID busy until the turn started by launch ends. Caller
// holds c.mu.
func (c *Client) reserve(chatID string) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c.inflight[chatID] = cancel
	c.wg.Add(1)
	return ctx
}

// launch runs ask and the reveal of its answer in the background.
func (c *Client) launch(ctx context.Context, chatID string, ask func(ctx context.Context) string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer c.wg.Done()
		defer close(done)

		c.runTurn(ctx, chatID, ask)

		c.mu.Lock()
		if cancel, ok := c.inflight[chatID]; ok {
			cancel()
			delete(c.inflight, chatID)
		}
		c.mu.Unlock()
	}()
	return done
}

func (c *Client) runTurn(ctx context.Context, chatID string, ask func(ctx context.Context) string) {
	reply := ask(ctx)
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	placeholder, err := c.model.AppendMessage(chatID, session.Message{Role: session.RoleAssistant})
	if err != nil {
		c.mu.Unlock()
		return
	}
	snap, version := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap, version, false)

	err = c.revealer.Reveal(ctx, reply, func(partial string) {
		c.mu.Lock()
		ok := c.model.SetMessageText(chatID, placeholder.ID, partial)
		c.mu.Unlock()
		if !ok {
			return
		}
		c.emit(Event{
			Type:      EventReveal,
			ChatID:    chatID,
			MessageID: placeholder.ID,
			Text:      partial,
			HTML:      format.Message(partial),
		})
	})
	if err != nil {
		c.logger.Debug("reveal stopped", zap.String("chat_id", chatID), zap.Error(err))
	}

	// A stopped reveal still leaves the full reply behind if the chat exists.
	c.mu.Lock()
	c.model.SetMessageText(chatID, placeholder.ID, reply)
	snap, version = c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap, version, true)
}

// snapshotLocked copies the model and stamps the copy with the next version.
// Caller holds c.mu.
func (c *Client) snapshotLocked() (*session.State, uint64) {
	c.version++
	return c.model.Snapshot(), c.version
}

// publish saves snap when persist is set and repaints with it, skipping
// either step once a newer snapshot got there first.
func (c *Client) publish(snap *session.State, version uint64, persist bool) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	if persist && version > c.savedVersion {
		c.savedVersion = version
		c.save(snap)
	}
	if version > c.renderedVersion {
		c.renderedVersion = version
		c.emitRender(snap)
	}
}

func (c *Client) save(snap *session.State) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := c.store.Save(ctx, snap); err != nil {
		c.logger.Error("failed to save state", zap.Error(err))
	}
}

func (c *Client) emitRender(snap *session.State) {
	c.emit(Event{Type: EventRender, State: snap})
}

func (c *Client) emit(e Event) {
	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	for _, fn := range c.listeners {
		fn(e)
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
