package llm

import (
	"fmt"
	"strings"
)

// RAGSystemPrompt constrains answers to the retrieved context.
func RAGSystemPrompt() string {
	return "You are a WordPress documentation assistant. Answer using only the context supplied with the question, " +
		"in at most two or three sentences. When the context does not cover the question, reply that the provided " +
		"context does not contain the answer instead of guessing."
}

// LLMOnlySystemPrompt is used when no retrieved context is available.
func LLMOnlySystemPrompt() string {
	return "You are a WordPress documentation assistant covering plugin and theme development. " +
		"Answer in at most two or three sentences, and say so plainly when you do not know."
}

// BuildRAGUserPrompt joins the question with the retrieved context block.
func BuildRAGUserPrompt(question string, contexts []string) string {
	return fmt.Sprintf("Question: %s\n\nContext:\n%s", question, strings.Join(contexts, "\n\n"))
}

// BuildLLMOnlyUserPrompt formats a bare question.
func BuildLLMOnlyUserPrompt(question string) string {
	return fmt.Sprintf("Question: %s", question)
}
