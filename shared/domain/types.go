package domain

type (
	PublicKey  = string
	PrivateKey = string
	EventId    = string

	BoardId        = string
	BoardShortName = string
	BoardName      = string

	ThreadId    = string
	ThreadTitle = string

	PostId   = string
	PostText = string

	SubscriptionId = string
	NotificationId = string

	RelayURL = string
)
