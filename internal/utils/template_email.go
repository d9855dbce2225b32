package utils

import (
	"bytes"
	"html/template"
	"strconv"

	"pizza_back_end/internal/models"
)

const ReceiptSubject = "🍕 Your Pizza Delivery receipt"

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Order receipt</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thank you for your order</h2>
		<p>Your payment is successful and the order has been placed.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left;">Item</th>
					<th style="padding: 10px; text-align: left;">Quantity</th>
					<th style="padding: 10px; text-align: left;">Unit price</th>
					<th style="padding: 10px; text-align: left;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Lines}}
				<tr>
					<td style="padding: 10px;">{{.Name}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{money .UnitPrice}}</td>
					<td style="padding: 10px;">{{money .LineTotal}}</td>
				</tr>
			{{- end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{money .Total}} {{.Currency}}</td>
				</tr>
			</tfoot>
		</table>
		<p style="color: #777; font-size: 12px;">Payment reference: {{.PaymentID}}</p>
	</div>
</body>
</html>`))

// RenderReceiptHTML génère le corps HTML du reçu de commande.
func RenderReceiptHTML(r *models.Receipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
