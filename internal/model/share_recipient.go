package model

type ShareRecipient struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Email      string `json:"email"`
	Ctime      int64  `json:"ctime"`
}
