package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one prior turn supplied by the caller.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
