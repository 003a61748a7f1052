package domain

import (
	"time"
)

type Thread struct {
	Id            ThreadId    `json:"id"`
	BoardId       BoardId     `json:"board_id"`
	Title         ThreadTitle `json:"title"`
	Content       PostText    `json:"content"`
	Images        []string    `json:"images"`
	Media         []Media     `json:"media"`
	AuthorPubkey  PublicKey   `json:"author_pubkey"`
	CreatedAt     time.Time   `json:"created_at"`
	ReplyCount    int         `json:"reply_count"`
	LastReplyTime time.Time   `json:"last_reply_time"`
}

// LastActivity is the time boards are sorted by: last reply, or creation when there are none.
func (t *Thread) LastActivity() time.Time {
	if t.LastReplyTime.IsZero() {
		return t.CreatedAt
	}
	return t.LastReplyTime
}

// to iterate thru layers: handler -> service -> codec
type ThreadCreationData struct {
	BoardId BoardId     `json:"board_id" validate:"required"`
	Title   ThreadTitle `json:"title" validate:"required,max=200"`
	Content PostText    `json:"content" validate:"max=20000"`
	Images  []string    `json:"images" validate:"max=8,dive,url"`
	Media   []Media     `json:"media" validate:"max=8,dive"`
}
