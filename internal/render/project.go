// Package render projects application state into view snapshots and paints
// them as HTML or terminal text. Projection reads only the state it is given.
package render

import (
	"html/template"
	"time"
	"unicode/utf8"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/format"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

// ChipNameLength bounds attachment chip labels, in runes.
const ChipNameLength = 15

type BlockKind string

const (
	// BlockFiles shows a message's attachments. Caption is set only when the
	// message has no text.
	BlockFiles BlockKind = "files"
	// BlockText is a bubble with formatted text and a footer.
	BlockText BlockKind = "text"
)

type HistoryItem struct {
	ID     string
	Title  string
	Active bool
}

type FileView struct {
	Name    string
	DataURL template.URL
	IsImage bool
}

type Block struct {
	Kind       BlockKind
	MessageID  string
	Role       session.Role
	Files      []FileView
	Caption    string
	HTML       template.HTML
	Timestamp  string
	Regenerate bool
}

type Chip struct {
	Index     int
	Name      string
	Thumbnail template.URL
}

// Snapshot is everything needed to paint the UI once.
type Snapshot struct {
	Title           string
	ActiveChatID    string
	History         []HistoryItem
	Blocks          []Block
	Chips           []Chip
	AttachmentCount int
}

// Project turns state into a snapshot. It is total: a nil or empty state
// yields an empty snapshot.
func Project(state *session.State, now time.Time) Snapshot {
	snap := Snapshot{
		History: []HistoryItem{},
		Blocks:  []Block{},
		Chips:   []Chip{},
	}
	if state == nil {
		return snap
	}

	snap.ActiveChatID = state.ActiveChatID
	for _, c := range state.Chats {
		active := c.ID == state.ActiveChatID
		snap.History = append(snap.History, HistoryItem{ID: c.ID, Title: c.Title, Active: active})
		if active {
			snap.Title = c.Title
			for _, msg := range c.Messages {
				snap.Blocks = append(snap.Blocks, Blocks(msg, now)...)
			}
		}
	}

	for i, f := range state.AttachedFiles {
		chip := Chip{Index: i, Name: truncate(f.Name, ChipNameLength)}
		if f.IsImage() {
			chip.Thumbnail = template.URL(f.DataURL())
		}
		snap.Chips = append(snap.Chips, chip)
	}
	snap.AttachmentCount = len(state.AttachedFiles)

	return snap
}

// Blocks projects one message into its bubbles.
func Blocks(msg *session.Message, now time.Time) []Block {
	stamp := format.Timestamp(msg.Timestamp, now)
	hasText := msg.HasText()

	var blocks []Block
	if msg.HasFiles() {
		files := Block{
			Kind:      BlockFiles,
			MessageID: msg.ID,
			Role:      msg.Role,
			Files:     fileViews(msg.Files),
		}
		if !hasText {
			files.Caption = stamp
		}
		blocks = append(blocks, files)
	}

	if hasText || !msg.HasFiles() {
		blocks = append(blocks, Block{
			Kind:       BlockText,
			MessageID:  msg.ID,
			Role:       msg.Role,
			HTML:       template.HTML(format.Message(msg.Text)),
			Timestamp:  stamp,
			Regenerate: msg.Role == session.RoleAssistant,
		})
	}
	return blocks
}

func fileViews(files []session.FileRef) []FileView {
	out := make([]FileView, 0, len(files))
	for _, f := range files {
		v := FileView{Name: f.Name, IsImage: f.IsImage()}
		if v.IsImage {
			v.DataURL = template.URL(*f.Data)
		}
		out = append(out, v)
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
