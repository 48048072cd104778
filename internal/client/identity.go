package client

import (
	"regexp"
	"strings"
)

// identityKeywords are matched as substrings of the lower-cased text.
var identityKeywords = []string{
	// English
	"develop", "developer", "created", "creator", "made you",
	"built you", "programmed", "designer", "owner", "founder",
	"your maker", "who made", "who develop", "who create",
	"who build", "who program", "who designed", "who is behind",
	// misspellings and shorthand
	"who maked", "who creat", "devloper", "who make u", "made u",
	"ur creator", "ur maker", "creator?", "owner?",
	// Telugu
	"ఎవరు", "వెవరు", "తయారు", "డెవలప్",
	// Tamil
	"யார்", "உருவாக்கின", "டெவலப்",
	// Hindi
	"किसने", "बनाया", "डेवलपर",
	// Spanish
	"quien", "creo", "creó", "desarrolló",
	// Chinese
	"谁", "开发", "制作",
}

var identityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`who.*you`),
	regexp.MustCompile(`who.*made`),
	regexp.MustCompile(`who.*create`),
	regexp.MustCompile(`your.*creator`),
	regexp.MustCompile(`ur.*creator`),
	regexp.MustCompile(`developer.*you`),
	regexp.MustCompile(`who.*developer`),
}

// IsIdentityQuestion reports whether text asks who built the assistant.
func IsIdentityQuestion(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false
	}
	for _, k := range identityKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	for _, p := range identityPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
