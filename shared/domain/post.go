package domain

import "time"

// Post is immutable once created. References holds ids of the posts it replies to.
type Post struct {
	Id           PostId    `json:"id"`
	ThreadId     ThreadId  `json:"thread_id"`
	Content      PostText  `json:"content"`
	AuthorPubkey PublicKey `json:"author_pubkey"`
	CreatedAt    time.Time `json:"created_at"`
	Images       []string  `json:"images"`
	Media        []Media   `json:"media"`
	References   []PostId  `json:"references"`
}

type PostCreationData struct {
	ThreadId   ThreadId `json:"thread_id" validate:"required"`
	Content    PostText `json:"content" validate:"max=20000"`
	Images     []string `json:"images" validate:"max=8,dive,url"`
	Media      []Media  `json:"media" validate:"max=8,dive"`
	References []PostId `json:"references" validate:"max=32"`
}
