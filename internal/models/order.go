package models

import "time"

type ReceiptLine struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Receipt est produit après un paiement accepté et envoyé par email.
type Receipt struct {
	Email     string        `json:"email"`
	PaymentID string        `json:"paymentId"`
	Lines     []ReceiptLine `json:"lines"`
	Total     float64       `json:"total"`
	Currency  string        `json:"currency"`
	PaidAt    time.Time     `json:"paidAt"`
}
