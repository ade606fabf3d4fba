package domain

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationFollow   NotificationType = "follow"
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationPurchase NotificationType = "purchase"
	NotificationSystem   NotificationType = "system"
)

// Notification mirrors one entry of the backend's live notification feed.
type Notification struct {
	CreatedAt  time.Time        `json:"createdAt"`
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	FromUserID string           `json:"fromUserId,omitempty"`
	Link       string           `json:"link,omitempty"`
	Read       bool             `json:"read"`
}

// UnreadCount returns the number of unread notifications.
func UnreadCount(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}
