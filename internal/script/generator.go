// Package script turns a topic prompt into a short spoken-word script using
// a remote LLM service.
package script

import "context"

// Generator produces a speakable transcript from a topic prompt.
type Generator interface {
	GenerateScript(ctx context.Context, topic string) (string, error)
}

// DefaultSystemPrompt instructs the model to emit text suitable for direct
// speech synthesis: no markup, no stage directions, no headings.
const DefaultSystemPrompt = "You write short spoken-word scripts. " +
	"Respond with plain prose only, ready to be read aloud by a text-to-speech voice: " +
	"no markdown, no headings, no stage directions, no speaker labels."
