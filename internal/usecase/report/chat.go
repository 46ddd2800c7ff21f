package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
)

const (
	therapistPrompt = "Ты врач терапевт, дружелюбный и готовый помочь с вопросами о здоровье. Отвечай кратко и по делу."
	chatTemperature = 0.7
	chatTimeout     = 45 * time.Second
)

// Consultant answers free-form health questions outside of any flow
type Consultant struct {
	llm LLMConnector
}

func NewConsultant(llm LLMConnector) *Consultant {
	return &Consultant{llm: llm}
}

// Answer returns the cleaned reply, entity.ErrEmptyCompletion when nothing useful remains
func (c *Consultant) Answer(ctx context.Context, question string) (string, error) {
	resp, err := c.llm.Complete(ctx, []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: therapistPrompt},
		{Role: entity.RoleUser, Content: strings.TrimSpace(question)},
	}, entity.CompletionOptions{
		Temperature: chatTemperature,
		Timeout:     chatTimeout,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	answer := Clean(resp)
	if answer == "" {
		return "", entity.ErrEmptyCompletion
	}
	return answer, nil
}
