package api

import "github.com/0xrinegade/4ochan/shared/domain"

// Request DTOs

// CreateThreadRequest takes the board from the url.
type CreateThreadRequest struct {
	Title   string         `json:"title" validate:"required"`
	Content string         `json:"content,omitempty"`
	Images  []string       `json:"images,omitempty"`
	Media   []domain.Media `json:"media,omitempty"`
}

type CreatePostRequest struct {
	Content    string          `json:"content,omitempty"`
	Images     []string        `json:"images,omitempty"`
	Media      []domain.Media  `json:"media,omitempty"`
	References []domain.PostId `json:"references,omitempty"`
}

// Response DTOs

type ThreadResponse struct {
	domain.Thread
	Subscribed bool `json:"subscribed"`
}

type ThreadsResponse struct {
	Threads []domain.Thread `json:"threads"`
}

// PostResponse carries the rendered, sanitized content next to the raw one.
type PostResponse struct {
	domain.Post
	HTML string `json:"html"`
}

type PostsResponse struct {
	Posts []PostResponse `json:"posts"`
}
