// Package events публикует события жизненного цикла учётных записей
// в RabbitMQ. Публикация выполняется по принципу best-effort: сбой
// брокера логируется вызывающей стороной и не валит запрос.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий жизненного цикла учётной записи.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent — сообщение о изменении учётной записи для внешних
// потребителей (аудит, нотификации). Пароли и хэши в событие не входят.
type UserEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserEvent создаёт событие указанного типа для пользователя.
func NewUserEvent(eventType, username string) UserEvent {
	return UserEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Username:   username,
		OccurredAt: time.Now().UTC(),
	}
}

// QueueConfig описывает очередь и ключ маршрутизации для потребителя.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetUserQueues возвращает очереди, объявляемые на старте сервиса.
func GetUserQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "users.audit", RoutingKey: "lifecycle"},
	}
}
