package textproc

import (
	"strings"
	"unicode/utf8"
)

// charsPerToken is a deliberate approximation (~4 chars per token for
// English-ish text). It keeps the chunker free of any tokenizer or
// embedding-model dependency at the cost of precision on other scripts.
const charsPerToken = 4

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// SplitSentences splits text into sentence-like units. A boundary is the
// whitespace following '.', '!' or '?'. Heuristic only: abbreviations and
// decimals will produce false splits.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		// consume trailing terminators ("?!", "...")
		j := i + 1
		for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?') {
			j++
		}
		if j >= len(runes) {
			i = j - 1
			continue
		}
		if runes[j] != ' ' && runes[j] != '\t' && runes[j] != '\n' && runes[j] != '\r' {
			i = j - 1
			continue
		}
		sentences = append(sentences, string(runes[start:j]))
		// skip the whitespace run
		for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\n' || runes[j] == '\r') {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

// Chunk splits text into overlapping, size-bounded chunks along sentence
// boundaries. Budgets are given in tokens and converted to characters.
//
// Sentences are accumulated greedily; when appending a sentence would push
// the running chunk past the budget, the chunk is closed and the next one
// is seeded with the raw character tail of the closed chunk (overlap)
// followed by the triggering sentence. A single sentence longer than the
// budget is never split and becomes its own oversized chunk.
//
// Pure and deterministic; empty input yields no chunks.
func Chunk(text string, maxTokens, overlapTokens int) []string {
	maxChars := maxTokens * charsPerToken
	overlapChars := overlapTokens * charsPerToken

	sentences := SplitSentences(text)

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		if len(current)+len(sentence) > maxChars && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			if overlapChars > 0 && len(current) > overlapChars {
				current = tail(current, overlapChars) + " " + sentence
			} else {
				current = sentence
			}
			continue
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// tail returns roughly the last n bytes of s, extended backwards to the
// nearest rune boundary. The cut may land mid-word; overlap seeding is a
// raw truncation, not a re-split into whole sentences.
func tail(s string, n int) string {
	if n >= len(s) {
		return s
	}
	i := len(s) - n
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[i:]
}
