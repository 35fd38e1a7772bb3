package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/domain"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notification struct {
	ID        string         `json:"id"`
	Level     Level          `json:"level"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	TokenId   domain.TokenId `json:"tokenId,omitempty"`
	TxHash    domain.TxHash  `json:"txHash,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func New(level Level, title, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Sink delivers notifications to users or operators
type Sink interface {
	Notify(ctx ctx.Ctx, n Notification) error
}
