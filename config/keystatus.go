package config

import (
	"strings"
	"unicode/utf8"
)

// KeyStatus describes the configured API key without revealing it
type KeyStatus struct {
	HasOpenAIKey bool    `json:"hasOpenAIKey"`
	Prefix       *string `json:"prefix"`
}

// minKeyLength is the length a trimmed key must exceed to count as present
const minKeyLength = 20

const prefixLength = 8

// NewKeyStatus reports whether key looks configured and its first 8
// characters. Lengths count characters, not bytes. Prefix is nil for an
// empty key.
func NewKeyStatus(key string) KeyStatus {
	status := KeyStatus{
		HasOpenAIKey: utf8.RuneCountInString(strings.TrimSpace(key)) > minKeyLength,
	}
	if key != "" {
		prefix := key
		if runes := []rune(key); len(runes) > prefixLength {
			prefix = string(runes[:prefixLength])
		}
		status.Prefix = &prefix
	}
	return status
}

// KeyStatus reports on the configured LLM API key
func (c *Config) KeyStatus() KeyStatus {
	return NewKeyStatus(c.LLM.APIKey)
}
