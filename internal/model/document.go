package model

// Document owns its share sub-state: Shared != 0 together with a non-empty
// ShareToken marks an active grant; expiry is evaluated at resolve time only.
type Document struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	FileName       string `json:"file_name"`
	FileType       string `json:"file_type"`
	FileSize       int64  `json:"file_size"`
	FileData       string `json:"file_data,omitempty"`
	Shared         int    `json:"shared"`
	ShareToken     string `json:"-"`
	ShareExpiresAt int64  `json:"share_expires_at,omitempty"`
	ShareCtime     int64  `json:"share_ctime,omitempty"`
	Ctime          int64  `json:"ctime"`
	Mtime          int64  `json:"mtime"`
}
