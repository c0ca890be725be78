package search

import "fmt"

// SystemPrompt instructs the completion model to answer from the supplied
// context only.
const SystemPrompt = "You are a RAG assistant. Use ONLY the provided context. " +
	"If the answer is not in the context, say: \"I don't know from the provided documents.\" " +
	"Cite sources by file name."

// BuildPrompt returns the system instruction and user message for a
// question answered from contextBlock.
func BuildPrompt(contextBlock, question string) (system, user string) {
	user = fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION:\n%s\n\nReturn:\n1) Answer\n2) Sources (file names)\n",
		contextBlock, question)
	return SystemPrompt, user
}
