package model

type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"`
	AadhaarNumber string `json:"aadhaar_number"`
	Phone         string `json:"phone"`
	Verified      int    `json:"verified"`
	Ctime         int64  `json:"ctime"`
	Mtime         int64  `json:"mtime"`
}
