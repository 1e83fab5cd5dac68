package llm

// FormatMessages builds the conversation for a prompt. A non-nil system prompt,
// even an empty one, becomes the leading system message. The user prompt is
// always the final message and is passed through unchanged.
func FormatMessages(systemPrompt *string, userPrompt string) Conversation {
	messages := make(Conversation, 0, 2)
	if systemPrompt != nil {
		messages = append(messages, Message{Role: RoleSystem, Content: *systemPrompt})
	}
	return append(messages, Message{Role: RoleUser, Content: userPrompt})
}
