package session

import (
	"encoding/base64"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultTitle is carried by a chat until its first user text names it.
const DefaultTitle = "New Chat"

// MaxTitleLength bounds chat titles, in runes.
const MaxTitleLength = 40

// FileRef is an attachment as stored in the transcript. Data holds a base64
// data URL for images and is nil for every other file.
type FileRef struct {
	Name string  `json:"name"`
	Data *string `json:"data"`
}

func (f FileRef) IsImage() bool {
	return f.Data != nil && *f.Data != ""
}

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Files     []FileRef `json:"files"`
	Timestamp int64     `json:"timestamp"`
}

func (m Message) HasText() bool {
	return strings.TrimSpace(m.Text) != ""
}

func (m Message) HasFiles() bool {
	return len(m.Files) > 0
}

type Chat struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Messages []*Message `json:"messages"`
}

// PendingFile is an attachment picked by the user but not sent yet.
type PendingFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

func (p PendingFile) IsImage() bool {
	return strings.HasPrefix(p.ContentType, "image/")
}

// DataURL encodes the file as data:<mime>;base64,<payload>.
func (p PendingFile) DataURL() string {
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Ref converts the pending file into its transcript form. Only images keep
// their payload.
func (p PendingFile) Ref() FileRef {
	ref := FileRef{Name: p.Name}
	if p.IsImage() {
		data := p.DataURL()
		ref.Data = &data
	}
	return ref
}

// State is the whole persisted application state. ActiveChatID is empty iff
// Chats is empty.
type State struct {
	Chats         []*Chat       `json:"chats"`
	ActiveChatID  string        `json:"activeChatId"`
	AttachedFiles []PendingFile `json:"attachedFiles"`
}

// NewState returns the default empty state.
func NewState() *State {
	return &State{
		Chats:         []*Chat{},
		AttachedFiles: []PendingFile{},
	}
}

// Normalize repairs nil collections and a dangling active chat reference.
func (s *State) Normalize() {
	if s.Chats == nil {
		s.Chats = []*Chat{}
	}
	if s.AttachedFiles == nil {
		s.AttachedFiles = []PendingFile{}
	}

	chats := s.Chats[:0]
	for _, c := range s.Chats {
		if c == nil || c.ID == "" {
			continue
		}
		if c.Messages == nil {
			c.Messages = []*Message{}
		}
		msgs := c.Messages[:0]
		for _, m := range c.Messages {
			if m != nil {
				msgs = append(msgs, m)
			}
		}
		c.Messages = msgs
		chats = append(chats, c)
	}
	s.Chats = chats

	if s.findChat(s.ActiveChatID) == nil {
		s.ActiveChatID = ""
		if len(s.Chats) > 0 {
			s.ActiveChatID = s.Chats[0].ID
		}
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := &State{
		Chats:         make([]*Chat, len(s.Chats)),
		ActiveChatID:  s.ActiveChatID,
		AttachedFiles: make([]PendingFile, len(s.AttachedFiles)),
	}
	for i, c := range s.Chats {
		out.Chats[i] = c.clone()
	}
	for i, f := range s.AttachedFiles {
		f.Data = append([]byte(nil), f.Data...)
		out.AttachedFiles[i] = f
	}
	return out
}

func (s *State) findChat(id string) *Chat {
	if id == "" {
		return nil
	}
	for _, c := range s.Chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (c *Chat) clone() *Chat {
	out := &Chat{ID: c.ID, Title: c.Title, Messages: make([]*Message, len(c.Messages))}
	for i, m := range c.Messages {
		cp := m.clone()
		out.Messages[i] = &cp
	}
	return out
}

func (m *Message) clone() Message {
	cp := *m
	cp.Files = make([]FileRef, len(m.Files))
	for i, f := range m.Files {
		if f.Data != nil {
			d := *f.Data
			f.Data = &d
		}
		cp.Files[i] = f
	}
	return cp
}
