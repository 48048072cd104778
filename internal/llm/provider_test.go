package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantMIME string
		wantData string
		wantOK   bool
	}{
		{"png", "data:image/png;base64,aGk=", "image/png", "hi", true},
		{"not base64", "data:text/plain,hi", "", "", false},
		{"remote url", "https://example.com/a.png", "", "", false},
		{"bad payload", "data:image/png;base64,@@@", "", "", false},
		{"no comma", "data:image/png;base64", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mime, data, ok := ParseDataURL(tc.url)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantMIME, mime)
			assert.Equal(t, tc.wantData, string(data))
		})
	}
}

func TestApply(t *testing.T) {
	got := Apply(Options{Temperature: 0.7}, WithModel("m"), WithMaxTokens(10))
	assert.Equal(t, Options{Temperature: 0.7, MaxTokens: 10, Model: "m"}, got)
}
