// Package notify builds the email and web-push payloads the worker
// delivers. Builders are pure; queueing and transport live in jobs.
package notify

import (
	"fmt"

	"github.com/tawreed/tawreed/internal/money"
)

// Mail is one outbound email.
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ShipmentStatusMail tells the customer their shipment moved.
func ShipmentStatusMail(to, reference, status string) Mail {
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("Shipment %s update", reference),
		Body: fmt.Sprintf(
			"Your shipment %s is now %s. Track it any time from your dashboard.",
			reference, status),
	}
}

// InvoiceIssuedMail delivers a fresh invoice.
func InvoiceIssuedMail(to, number string, total float64, currency, dueDate string) Mail {
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("Invoice %s", number),
		Body: fmt.Sprintf(
			"Invoice %s for %s is ready. Payment is due by %s.",
			number, money.FormatWithCode(total, currency), dueDate),
	}
}

// InvoiceOverdueMail nudges on a missed due date.
func InvoiceOverdueMail(to, number string, total float64, currency string) Mail {
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("Invoice %s is overdue", number),
		Body: fmt.Sprintf(
			"Invoice %s for %s is past its due date. Please arrange payment.",
			number, money.FormatWithCode(total, currency)),
	}
}

// PartnerPayoutMail confirms a settlement to a shipping partner.
func PartnerPayoutMail(to, partnerName, reference string, amount float64, currency string) Mail {
	return Mail{
		To:      to,
		Subject: fmt.Sprintf("Payout %s processed", reference),
		Body: fmt.Sprintf(
			"Hello %s, payout %s of %s has been processed to your account.",
			partnerName, reference, money.FormatWithCode(amount, currency)),
	}
}
