package models

// User est le document persisté dans le namespace "users", clé = email normalisé.
type User struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	StreetAddress string `json:"streetAddress"`
	PasswordHash  string `json:"hashedPassword"`
}
