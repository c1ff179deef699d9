package models

// ProviderMessage is the role+content pair handed to a language-model
// provider as conversation context. It is deliberately smaller than
// ChatMessage: providers never see storage identifiers or timestamps.
type ProviderMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}
