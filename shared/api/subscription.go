package api

import "github.com/0xrinegade/4ochan/shared/domain"

// Request DTOs

// SubscribeRequest: both flags default to true when omitted.
type SubscribeRequest struct {
	NotifyOnReplies  *bool `json:"notifyOnReplies,omitempty"`
	NotifyOnMentions *bool `json:"notifyOnMentions,omitempty"`
}

// Response DTOs

type SubscriptionsResponse struct {
	Subscriptions []domain.ThreadSubscription `json:"subscriptions"`
}

type SubscriptionStatusResponse struct {
	Subscribed bool `json:"subscribed"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
