// Package llm defines the provider-agnostic contract the gateway uses to talk
// to a chat model.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrRateLimited marks an upstream rejection that may succeed if retried later.
var ErrRateLimited = errors.New("llm: rate limited")

// Message is one chat turn. Images are URLs, usually base64 data URLs.
type Message struct {
	Role    string
	Content string
	Images  []string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Apply folds opts over defaults.
func Apply(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// Provider is implemented by every model backend.
type Provider interface {
	// Chat sends the conversation and returns the model's reply. Rate limit
	// rejections wrap ErrRateLimited.
	Chat(ctx context.Context, messages []Message, opts ...Option) (string, error)
	Name() string
}

// ParseDataURL splits a base64 data URL into its MIME type and payload.
func ParseDataURL(url string) (mimeType string, data []byte, ok bool) {
	rest, found := strings.CutPrefix(url, "data:")
	if !found {
		return "", nil, false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, false
	}
	mimeType, found = strings.CutSuffix(meta, ";base64")
	if !found {
		return "", nil, false
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return mimeType, data, true
}
