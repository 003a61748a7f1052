package domain

import "time"

// ThreadSubscription is durable. At most one exists per thread.
type ThreadSubscription struct {
	Id               SubscriptionId `json:"id"`
	ThreadId         ThreadId       `json:"threadId"`
	Title            ThreadTitle    `json:"title"`
	NotifyOnReplies  bool           `json:"notifyOnReplies"`
	NotifyOnMentions bool           `json:"notifyOnMentions"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type Notification struct {
	Id              NotificationId `json:"id"`
	RecipientPubkey PublicKey      `json:"recipientPubkey"`
	Title           string         `json:"title"`
	Message         string         `json:"message"`
	ThreadId        ThreadId       `json:"threadId"`
	PostId          PostId         `json:"postId,omitempty"`
	Read            bool           `json:"read"`
	CreatedAt       time.Time      `json:"createdAt"`
	ReadAt          *time.Time     `json:"readAt,omitempty"`
}
