package models

import "time"

// Token est la session courante d'un utilisateur (namespace "tokens").
// Expires est en millisecondes Unix.
type Token struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

func NewToken(value string, expires time.Time) *Token {
	return &Token{Token: value, Expires: expires.UnixMilli()}
}

func (t *Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}

// Expired suit la règle d'origine : expiré seulement si now > expires.
func (t *Token) Expired(now time.Time) bool {
	return now.UnixMilli() > t.Expires
}
