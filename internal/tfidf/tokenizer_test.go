package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeLowercasesAndDropsStopWords(t *testing.T) {
	tokens := Tokenize("The Machine Learning Fundamentals are Great")
	assert.Equal(t, []string{"machine", "learning", "fundamentals", "great"}, tokens)
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := Tokenize("a I to machine")
	assert.Equal(t, []string{"machine"}, tokens)
}

func TestTokenizeKeepsInternalHyphens(t *testing.T) {
	tokens := Tokenize("state-of-the-art models")
	assert.Contains(t, tokens, "state-of-the-art")
}

func TestTokenizeEntryContentNonText(t *testing.T) {
	tokens := TokenizeEntryContent([]byte("ignored binary blob"), "application/octet-stream")
	assert.Nil(t, tokens)
}

func TestTokenizeEntryContentText(t *testing.T) {
	tokens := TokenizeEntryContent([]byte("Machine learning fundamentals"), "text/plain")
	assert.Equal(t, []string{"machine", "learning", "fundamentals"}, tokens)
}
