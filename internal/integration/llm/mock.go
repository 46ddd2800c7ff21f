package llm

import (
	"context"
	"strings"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector - мок-реализация LLM коннектора для локального запуска
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

const mockStructured = `{"hemoglobin": "142 г/л", "rbc": "4.8 10^12/л", "wbc": "6.1 10^9/л", "plt": "250 10^9/л", "esr": "8 мм/ч"}`

const mockReport = `<think>черновые рассуждения</think>
**1. Анализ отклонений**
Все показатели в пределах референсных значений (MOCK).

**2. Возможные причины и рекомендации**
Отклонений не выявлено, дополнительных обследований не требуется.

**3. Заключение для пациента**
Анализы в норме. Продолжайте вести здоровый образ жизни.`

const mockChat = "Я виртуальный помощник (MOCK). Опишите, что вас беспокоит."

// Complete - мок ответа нейросети, выбирается по системному промпту
func (m *MockConnector) Complete(ctx context.Context, messages []entity.ChatMessage, opts entity.CompletionOptions) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting completion", zap.Int("message_count", len(messages)))

	var system string
	for _, msg := range messages {
		if msg.Role == entity.RoleSystem {
			system = msg.Content
			break
		}
	}

	var resp string
	switch {
	case strings.Contains(system, "JSON"):
		resp = mockStructured
	case strings.Contains(system, "гематолог"):
		resp = mockReport
	default:
		resp = mockChat
	}

	ctxzap.Info(ctx, "[MOCK] completion generated", zap.Int("result_length", len(resp)))
	return resp, nil
}
