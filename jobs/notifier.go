package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tawreed/tawreed/internal/invoices"
	"github.com/tawreed/tawreed/internal/notify"
	"github.com/tawreed/tawreed/internal/partners"
	"github.com/tawreed/tawreed/internal/shipments"
)

// Enqueuer is the slice of Client the notifier needs.
type Enqueuer interface {
	EnqueueMail(ctx context.Context, mail notify.Mail) (*asynq.TaskInfo, error)
	EnqueuePush(ctx context.Context, subscription string, payload notify.PushPayload) (*asynq.TaskInfo, error)
}

// Notifier turns domain events into queued mail and push deliveries. It
// satisfies the notifier interfaces of shipments, invoices and partners.
// Enqueue failures are logged, never propagated: a full queue must not fail
// the business operation that triggered the notification.
type Notifier struct {
	queue  Enqueuer
	logger *slog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(queue Enqueuer, logger *slog.Logger) *Notifier {
	return &Notifier{queue: queue, logger: logger}
}

// ShipmentStatusChanged mails the customer and pushes to their devices.
func (n *Notifier) ShipmentStatusChanged(ctx context.Context, s shipments.Shipment) {
	mail := notify.ShipmentStatusMail(s.CustomerEmail, s.Reference, string(s.Status))
	n.mail(ctx, mail)
	push := notify.NewPush(
		fmt.Sprintf("Shipment %s update", s.Reference),
		fmt.Sprintf("Now %s", string(s.Status)),
		"/shipments/"+s.Reference)
	n.push(ctx, s.CustomerEmail, push)
}

// InvoiceIssued mails the customer their new invoice.
func (n *Notifier) InvoiceIssued(ctx context.Context, inv invoices.Invoice) {
	mail := notify.InvoiceIssuedMail(inv.CustomerEmail, inv.Number, inv.Total,
		inv.Currency, inv.DueDate.Format("2006-01-02"))
	n.mail(ctx, mail)
}

// InvoiceOverdue nudges the customer about a missed due date.
func (n *Notifier) InvoiceOverdue(ctx context.Context, inv invoices.Invoice) {
	mail := notify.InvoiceOverdueMail(inv.CustomerEmail, inv.Number, inv.Total, inv.Currency)
	n.mail(ctx, mail)
	push := notify.NewPush(
		fmt.Sprintf("Invoice %s is overdue", inv.Number),
		"Please arrange payment.",
		"/invoices")
	n.push(ctx, inv.CustomerEmail, push)
}

// PartnerPayout confirms a settlement to the partner.
func (n *Notifier) PartnerPayout(ctx context.Context, p partners.Partner, payout partners.Payout) {
	mail := notify.PartnerPayoutMail(p.Email, p.Name, payout.Reference, payout.Amount, payout.Currency)
	n.mail(ctx, mail)
}

func (n *Notifier) mail(ctx context.Context, mail notify.Mail) {
	if mail.To == "" {
		return
	}
	if _, err := n.queue.EnqueueMail(ctx, mail); err != nil {
		n.logger.Warn("enqueue mail", slog.String("to", mail.To), slog.Any("error", err))
	}
}

func (n *Notifier) push(ctx context.Context, subscription string, payload notify.PushPayload) {
	if subscription == "" {
		return
	}
	if _, err := n.queue.EnqueuePush(ctx, subscription, payload); err != nil {
		n.logger.Warn("enqueue push", slog.String("title", payload.Title), slog.Any("error", err))
	}
}
