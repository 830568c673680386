package usecase

import "ask-web/internal/domain"

const (
	roleSystem = "system"
	roleUser   = "user"
)

// buildMessages returns the two-message conversation sent for every question:
// the fixed system instruction followed by the user's question.
func buildMessages(systemPrompt, question string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: roleSystem, Content: systemPrompt},
		{Role: roleUser, Content: question},
	}
}
