package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/format"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

var (
	userHeader      = color.New(color.FgCyan, color.Bold)
	assistantHeader = color.New(color.FgGreen, color.Bold)
	dimText         = color.New(color.Faint)
	activeMarker    = color.New(color.FgYellow, color.Bold)
)

// TerminalRenderer paints chats for a terminal. Assistant text is rendered as
// markdown with glamour; when glamour cannot start, text is printed plain.
type TerminalRenderer struct {
	md *glamour.TermRenderer
}

func NewTerminal(width int) *TerminalRenderer {
	if width <= 0 {
		width = 80
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		md = nil
	}
	return &TerminalRenderer{md: md}
}

// History prints the chat list, marking the active chat.
func (r *TerminalRenderer) History(w io.Writer, snap Snapshot) {
	if len(snap.History) == 0 {
		dimText.Fprintln(w, "no chats")
		return
	}
	for _, h := range snap.History {
		marker := "  "
		if h.Active {
			marker = activeMarker.Sprint("* ")
		}
		fmt.Fprintf(w, "%s%s  %s\n", marker, h.Title, dimText.Sprint(h.ID))
	}
}

// Transcript prints every message of the active chat.
func (r *TerminalRenderer) Transcript(w io.Writer, chat *session.Chat, now time.Time) {
	if chat == nil {
		dimText.Fprintln(w, "no active chat")
		return
	}
	fmt.Fprintln(w, activeMarker.Sprint(chat.Title))
	for _, msg := range chat.Messages {
		r.Message(w, msg, now)
	}
}

func (r *TerminalRenderer) Message(w io.Writer, msg *session.Message, now time.Time) {
	header := userHeader
	name := "You"
	if msg.Role == session.RoleAssistant {
		header = assistantHeader
		name = "CampusAI"
	}
	fmt.Fprintf(w, "\n%s %s\n", header.Sprint(name), dimText.Sprint(format.Timestamp(msg.Timestamp, now)))

	for _, f := range msg.Files {
		kind := "file"
		if f.IsImage() {
			kind = "image"
		}
		dimText.Fprintf(w, "  [%s] %s\n", kind, f.Name)
	}
	if msg.HasText() {
		fmt.Fprintln(w, r.Markdown(msg.Text))
	}
}

// Markdown renders text for the terminal.
func (r *TerminalRenderer) Markdown(text string) string {
	if r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
