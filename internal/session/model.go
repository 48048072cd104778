package session

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrEmptyMessage = errors.New("message has neither text nor files")
)

const titleWords = 6

// Model owns the application state and is the only thing that mutates it.
// It is not safe for concurrent use; callers serialize access.
type Model struct {
	state      *State
	now        func() time.Time
	newID      func() string
	lastChatMS int64
}

type Option func(*Model)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// WithIDGenerator replaces the message id generator.
func WithIDGenerator(gen func() string) Option {
	return func(m *Model) {
		m.newID = gen
	}
}

// New wraps state, which the model takes ownership of. A nil state starts empty.
func New(state *State, opts ...Option) *Model {
	if state == nil {
		state = NewState()
	}
	state.Normalize()

	m := &Model{
		state: state,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a deep copy of the current state.
func (m *Model) Snapshot() *State {
	return m.state.Clone()
}

func (m *Model) ActiveChatID() string {
	return m.state.ActiveChatID
}

// ActiveChat returns a copy of the active chat.
func (m *Model) ActiveChat() (*Chat, bool) {
	return m.Chat(m.state.ActiveChatID)
}

// Chat returns a copy of the chat with the given id.
func (m *Model) Chat(id string) (*Chat, bool) {
	c := m.state.findChat(id)
	if c == nil {
		return nil, false
	}
	return c.clone(), true
}

func (m *Model) ChatCount() int {
	return len(m.state.Chats)
}

// CreateChat puts a fresh chat at the front and activates it.
func (m *Model) CreateChat() string {
	c := &Chat{
		ID:       m.nextChatID(),
		Title:    DefaultTitle,
		Messages: []*Message{},
	}
	m.state.Chats = append([]*Chat{c}, m.state.Chats...)
	m.state.ActiveChatID = c.ID
	return c.ID
}

// SwitchChat activates id and drops unsent attachments. Unknown ids are ignored.
func (m *Model) SwitchChat(id string) bool {
	if m.state.findChat(id) == nil {
		return false
	}
	m.state.ActiveChatID = id
	m.state.AttachedFiles = []PendingFile{}
	return true
}

// DeleteChat removes id. When it was active, the new first chat takes over.
func (m *Model) DeleteChat(id string) bool {
	idx := -1
	for i, c := range m.state.Chats {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	m.state.Chats = append(m.state.Chats[:idx], m.state.Chats[idx+1:]...)
	if m.state.ActiveChatID == id {
		m.state.ActiveChatID = ""
		if len(m.state.Chats) > 0 {
			m.state.ActiveChatID = m.state.Chats[0].ID
		}
	}
	return true
}

func (m *Model) RenameChat(id, name string) bool {
	c := m.state.findChat(id)
	if c == nil {
		return false
	}
	c.Title = truncateRunes(name, MaxTitleLength)
	return true
}

// AppendMessage adds msg to the chat, filling in ID and Timestamp. Timestamps
// are kept strictly increasing within a chat. The first user text of a chat
// still carrying DefaultTitle names it.
func (m *Model) AppendMessage(chatID string, msg Message) (Message, error) {
	c := m.state.findChat(chatID)
	if c == nil {
		return Message{}, ErrChatNotFound
	}
	if msg.Role != RoleAssistant && msg.Text == "" && len(msg.Files) == 0 {
		return Message{}, ErrEmptyMessage
	}

	if msg.ID == "" {
		msg.ID = m.newID()
	}
	if msg.Files == nil {
		msg.Files = []FileRef{}
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = m.now().UnixMilli()
	}
	if n := len(c.Messages); n > 0 && msg.Timestamp <= c.Messages[n-1].Timestamp {
		msg.Timestamp = c.Messages[n-1].Timestamp + 1
	}

	stored := msg.clone()
	c.Messages = append(c.Messages, &stored)

	if c.Title == DefaultTitle && msg.Role == RoleUser && msg.HasText() {
		c.Title = AutoTitle(msg.Text)
	}

	return stored.clone(), nil
}

func (m *Model) FindMessageByTimestamp(chatID string, ts int64) (Message, bool) {
	c := m.state.findChat(chatID)
	if c == nil {
		return Message{}, false
	}
	for _, msg := range c.Messages {
		if msg.Timestamp == ts {
			return msg.clone(), true
		}
	}
	return Message{}, false
}

func (m *Model) FindMessage(chatID, msgID string) (Message, bool) {
	c := m.state.findChat(chatID)
	if c == nil {
		return Message{}, false
	}
	for _, msg := range c.Messages {
		if msg.ID == msgID {
			return msg.clone(), true
		}
	}
	return Message{}, false
}

// RemoveMessage deletes a single message; used before regenerating a reply.
func (m *Model) RemoveMessage(chatID, msgID string) bool {
	c := m.state.findChat(chatID)
	if c == nil {
		return false
	}
	for i, msg := range c.Messages {
		if msg.ID == msgID {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// SetMessageText overwrites the text of one message in place.
func (m *Model) SetMessageText(chatID, msgID, text string) bool {
	c := m.state.findChat(chatID)
	if c == nil {
		return false
	}
	for _, msg := range c.Messages {
		if msg.ID == msgID {
			msg.Text = text
			return true
		}
	}
	return false
}

func (m *Model) Attach(files ...PendingFile) {
	m.state.AttachedFiles = append(m.state.AttachedFiles, files...)
}

func (m *Model) RemoveAttachment(index int) bool {
	if index < 0 || index >= len(m.state.AttachedFiles) {
		return false
	}
	m.state.AttachedFiles = append(m.state.AttachedFiles[:index], m.state.AttachedFiles[index+1:]...)
	return true
}

func (m *Model) Attachments() []PendingFile {
	out := make([]PendingFile, len(m.state.AttachedFiles))
	copy(out, m.state.AttachedFiles)
	return out
}

// TakeAttachments returns the pending files and clears them.
func (m *Model) TakeAttachments() []PendingFile {
	files := m.state.AttachedFiles
	m.state.AttachedFiles = []PendingFile{}
	return files
}

// nextChatID is "chat_<ms>", bumped past the previous id so that two chats
// created in the same millisecond stay distinct.
func (m *Model) nextChatID() string {
	ms := m.now().UnixMilli()
	if ms <= m.lastChatMS {
		ms = m.lastChatMS + 1
	}
	for m.state.findChat("chat_"+strconv.FormatInt(ms, 10)) != nil {
		ms++
	}
	m.lastChatMS = ms
	return "chat_" + strconv.FormatInt(ms, 10)
}

// AutoTitle names a chat after the first six words of text, stripped of
// surrounding punctuation, with the first letter upper-cased.
func AutoTitle(text string) string {
	var words []string
	for _, w := range strings.Fields(text) {
		w = strings.TrimFunc(w, unicode.IsPunct)
		if w == "" {
			continue
		}
		words = append(words, w)
		if len(words) == titleWords {
			break
		}
	}
	if len(words) == 0 {
		return DefaultTitle
	}

	title := strings.Join(words, " ")
	r, size := utf8.DecodeRuneInString(title)
	title = string(unicode.ToUpper(r)) + title[size:]
	return truncateRunes(title, MaxTitleLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
