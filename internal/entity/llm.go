package entity

import "time"

// Chat roles understood by the completion API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged block of a completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions controls a single completion call
type CompletionOptions struct {
	Temperature float32
	Timeout     time.Duration
}

// LLMModel is an entry of the model listing endpoint
type LLMModel struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// LLMModelsResponse is the body of the model listing endpoint
type LLMModelsResponse struct {
	Data []LLMModel `json:"data"`
}
