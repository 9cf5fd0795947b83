// Package genai renders generation instructions and wraps the hosted
// chat-completion provider used to produce farewell messages.
package genai

import (
	"fmt"
	"strings"
)

// persona and output constraints sent with every generation request. The
// model is asked to skip salutation placeholders because the page renders
// the farewell without knowing the recipient's name.
const (
	personaInstruction = "You are a ghostwriter for farewell messages published on a personal goodbye page."
	formatInstruction  = "Write a single farewell message in plain text. " +
		"Do not include a subject line, signature block, or placeholders such as [Name] or \"Dear ...\". " +
		"Do not wrap the message in quotation marks."
)

// RenderPrompt deterministically builds the instruction string for the
// generation client from the requested tone, an optional title giving
// context, and the user's own words. Same inputs always produce the same
// string; no validation is performed here.
func RenderPrompt(tone, title, message string) string {
	var b strings.Builder
	b.WriteString(personaInstruction)
	b.WriteString("\n")
	b.WriteString(formatInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "The message must be written in a %s tone.\n", strings.TrimSpace(tone))
	if t := strings.TrimSpace(title); t != "" {
		fmt.Fprintf(&b, "Context for the farewell: %s.\n", t)
	}
	if m := strings.TrimSpace(message); m != "" {
		fmt.Fprintf(&b, "Base the message on what the author wants to say:\n%s\n", m)
	}
	return b.String()
}
