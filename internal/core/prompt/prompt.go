// Package prompt builds the text fed to the inference process.
package prompt

import (
	"strings"

	"github.com/satishbabariya/nlsql/internal/config"
)

const primingPrefix = "You are a helpful assistant. You will generate proper SQL statements for me based on the question user asked. For running in "

// Priming returns the warm-up prompt sent once after configuration.
func Priming(dialect config.DBType) string {
	return primingPrefix + dialect.String()
}

// Question returns the chat-template prompt for one question. The knowledge
// text and the question are embedded verbatim.
func Question(knowledge string, dialect config.DBType, question string) string {
	var b strings.Builder
	b.Grow(len(knowledge) + len(question) + 160)
	b.WriteString("<|system|>You are a helpful assistant based on the following knowledge: ")
	b.WriteString(knowledge)
	b.WriteString(". You will generate proper SQL statements for ")
	b.WriteString(dialect.String())
	b.WriteString(".<|end|><|user|>")
	b.WriteString(question)
	b.WriteString("<|end|>.<|assistant|>")
	return b.String()
}
