// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strings"
	"unicode"

	"github.com/blevesearch/segment"
)

// TokenKind classifies a segment produced by Tokenize.
type TokenKind int

const (
	// TokenWord is a run of letters, digits, kana or ideographs.
	TokenWord TokenKind = iota
	// TokenPunct is any non-word, non-space segment (punctuation, symbols, emoji).
	TokenPunct
	// TokenSpace is whitespace without a line break.
	TokenSpace
	// TokenBreak is whitespace containing at least one line break.
	TokenBreak
)

// Token is one segment of text.
type Token struct {
	Text string
	Kind TokenKind
}

// Tokenize splits text on Unicode word boundaries (UAX #29). Invalid UTF-8
// sequences are replaced with U+FFFD first, since the segmenter stops at the
// first invalid byte. For valid input, concatenating the Text of every
// returned token yields the input.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	text = strings.ToValidUTF8(text, "\uFFFD")
	seg := segment.NewWordSegmenterDirect([]byte(text))
	var tokens []Token
	consumed := 0
	for seg.Segment() {
		part := string(seg.Bytes())
		consumed += len(part)
		if seg.Type() != segment.None {
			tokens = append(tokens, Token{Text: part, Kind: TokenWord})
			continue
		}
		tokens = append(tokens, Token{Text: part, Kind: classifyNonWord(part)})
	}
	// Keep whatever the segmenter could not split as one opaque token rather
	// than dropping it.
	if seg.Err() != nil || consumed < len(text) {
		if rest := text[consumed:]; rest != "" {
			tokens = append(tokens, Token{Text: rest, Kind: TokenPunct})
		}
	}
	return tokens
}

func classifyNonWord(s string) TokenKind {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return TokenPunct
		}
	}
	if strings.ContainsAny(s, "\n\r") {
		return TokenBreak
	}
	return TokenSpace
}

// Words returns the word tokens of text in order.
func Words(text string) []string {
	var words []string
	for _, tok := range Tokenize(text) {
		if tok.Kind == TokenWord {
			words = append(words, tok.Text)
		}
	}
	return words
}

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateForLog trims s and shortens it to limit runes, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
