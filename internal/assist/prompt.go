// Package assist calls the external text-analysis service for questions
// about mirroring activity and authorization policies.
package assist

import (
	"strings"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/audit"
)

const systemInstruction = "You are an assistant for a screen-mirroring service. " +
	"Answer questions about device authorization policies and session activity " +
	"concisely. When audit lines are provided, base your answer on them."

// BuildPrompt assembles the outbound prompt. When the question mentions logs,
// the recent denied audit lines are appended; all other lines are withheld.
func BuildPrompt(question string, auditLines []string) string {
	if !strings.Contains(strings.ToLower(question), "log") {
		return question
	}

	var denied []string
	for _, line := range auditLines {
		if strings.Contains(line, audit.DeniedMarker) {
			denied = append(denied, line)
		}
	}
	if len(denied) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString(question)
	b.WriteString("\n\nRecent denied activity:\n")
	for _, line := range denied {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
