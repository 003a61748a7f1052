package domain

// Board is decoded from a board-definition event. ShortName is the de-duplication key.
type Board struct {
	Id          BoardId        `json:"id"`
	ShortName   BoardShortName `json:"short_name"`
	Name        BoardName      `json:"name"`
	Description string         `json:"description"`
	ThreadCount int            `json:"thread_count"`
}

// to iterate thru layers: handler -> service -> codec
type BoardCreationData struct {
	ShortName   BoardShortName `json:"short_name" validate:"required,lowercase,alphanum,max=16"`
	Name        BoardName      `json:"name" validate:"required,max=64"`
	Description string         `json:"description" validate:"max=512"`
}
