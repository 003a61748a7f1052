package domain

// Media is an attachment referenced by url; nothing is uploaded through the relays.
type Media struct {
	URL      string `json:"url" validate:"required,url"`
	Type     string `json:"type" validate:"omitempty,oneof=image video audio"`
	MimeType string `json:"mimeType,omitempty"`
}
