package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/subscription/pkg/types"
)

// Notification records one customer-facing message and its delivery outcome.
// The (related_entity_id, type) pair is unique so a redelivered payment event
// reuses the existing row instead of creating a second notification.
type Notification struct {
	ID         int64                     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID int64                     `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Type       types.NotificationType    `gorm:"column:type;type:varchar(40);not null;uniqueIndex:uniq_entity_type,priority:2" json:"type"`
	Channel    types.NotificationChannel `gorm:"column:channel;type:varchar(16);not null" json:"channel"`
	Recipient  string                    `gorm:"column:recipient;type:varchar(255);not null" json:"recipient"`
	Subject    string                    `gorm:"column:subject;type:varchar(255);not null" json:"subject"`
	Content    string                    `gorm:"column:content;type:text;not null" json:"content"`
	Status     types.NotificationStatus  `gorm:"column:status;type:varchar(16);not null" json:"status"`
	// RelatedEntityID is the payment id that triggered the notification.
	RelatedEntityID int64          `gorm:"column:related_entity_id;not null;uniqueIndex:uniq_entity_type,priority:1" json:"related_entity_id"`
	ErrorMessage    string         `gorm:"column:error_message;type:varchar(512)" json:"error_message,omitempty"`
	RetryCount      int            `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	SentAt          *time.Time     `gorm:"column:sent_at;default:null" json:"sent_at,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) Delivered() bool {
	return n != nil && n.Status == types.NotificationStatusSent
}
