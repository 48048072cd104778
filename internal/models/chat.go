package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HistoryEntry is one prior turn sent alongside a chat request.
type HistoryEntry struct {
	Role    string         `json:"role"` // "user" or "assistant"
	Content HistoryContent `json:"content"`
}

// HistoryContent is either plain text or a list of content parts. On the wire
// it is a JSON string or a JSON array.
type HistoryContent struct {
	Text  string
	Parts []ContentPart
}

type ContentPart struct {
	Type     string    `json:"type"` // "image_url" or "text"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func TextContent(text string) HistoryContent {
	return HistoryContent{Text: text}
}

func PartsContent(parts ...ContentPart) HistoryContent {
	if parts == nil {
		parts = []ContentPart{}
	}
	return HistoryContent{Parts: parts}
}

func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// IsParts reports whether the content is a parts list.
func (c HistoryContent) IsParts() bool {
	return c.Parts != nil
}

// Images returns the URLs of every image part.
func (c HistoryContent) Images() []string {
	var urls []string
	for _, p := range c.Parts {
		if p.Type == "image_url" && p.ImageURL != nil && p.ImageURL.URL != "" {
			urls = append(urls, p.ImageURL.URL)
		}
	}
	return urls
}

// PlainText returns the text, joining text parts for a parts list.
func (c HistoryContent) PlainText() string {
	if !c.IsParts() {
		return c.Text
	}
	var buf bytes.Buffer
	for _, p := range c.Parts {
		if p.Type != "text" || p.Text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(p.Text)
	}
	return buf.String()
}

func (c HistoryContent) MarshalJSON() ([]byte, error) {
	if c.IsParts() {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *HistoryContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = HistoryContent{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = HistoryContent{Text: s}
		return nil
	case data[0] == '[':
		parts := []ContentPart{}
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*c = HistoryContent{Parts: parts}
		return nil
	default:
		return fmt.Errorf("history content must be a string or an array, got %s", data[:1])
	}
}

// ChatResponse is the reply from the chat endpoint. Failures are reported in
// Reply as well.
type ChatResponse struct {
	Reply string `json:"reply"`
}
