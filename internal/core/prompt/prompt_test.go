package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satishbabariya/nlsql/internal/config"
)

func TestPriming(t *testing.T) {
	assert.Equal(t,
		"You are a helpful assistant. You will generate proper SQL statements for me based on the question user asked. For running in PostgreSQL",
		Priming(config.PostgreSQL))
}

func TestQuestion(t *testing.T) {
	got := Question("K", config.SQLite, "Q?")
	assert.Equal(t,
		"<|system|>You are a helpful assistant based on the following knowledge: K. You will generate proper SQL statements for SQLite.<|end|><|user|>Q?<|end|>.<|assistant|>",
		got)
}

func TestQuestionEmbedsVerbatim(t *testing.T) {
	knowledge := "tables: <|end|> \"quoted\"\nnext line"
	question := "who's enrolled in {math}?"

	got := Question(knowledge, config.MySQL, question)
	assert.Contains(t, got, "knowledge: "+knowledge+". You will")
	assert.Contains(t, got, "<|user|>"+question+"<|end|>")
	assert.Contains(t, got, "statements for MySQL.")
}
