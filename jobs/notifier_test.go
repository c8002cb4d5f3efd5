package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/tawreed/tawreed/internal/invoices"
	"github.com/tawreed/tawreed/internal/notify"
	"github.com/tawreed/tawreed/internal/shipments"
)

type recordingQueue struct {
	mails  []notify.Mail
	pushes []SendPushPayload
}

func (q *recordingQueue) EnqueueMail(_ context.Context, mail notify.Mail) (*asynq.TaskInfo, error) {
	q.mails = append(q.mails, mail)
	return &asynq.TaskInfo{}, nil
}

func (q *recordingQueue) EnqueuePush(_ context.Context, sub string, payload notify.PushPayload) (*asynq.TaskInfo, error) {
	q.pushes = append(q.pushes, SendPushPayload{Subscription: sub, Payload: payload})
	return &asynq.TaskInfo{}, nil
}

func TestNotifierShipmentStatusChanged(t *testing.T) {
	queue := &recordingQueue{}
	n := NewNotifier(queue, slog.Default())

	n.ShipmentStatusChanged(context.Background(), shipments.Shipment{
		Reference:     "SH-AB12CD34",
		CustomerEmail: "customer@example.com",
		Status:        shipments.StageInTransit,
	})

	require.Len(t, queue.mails, 1)
	require.Equal(t, "customer@example.com", queue.mails[0].To)
	require.Contains(t, queue.mails[0].Subject, "SH-AB12CD34")
	require.Len(t, queue.pushes, 1)
	require.Equal(t, "/shipments/SH-AB12CD34", queue.pushes[0].Payload.Data.URL)
}

func TestNotifierSkipsEmptyRecipients(t *testing.T) {
	queue := &recordingQueue{}
	n := NewNotifier(queue, slog.Default())

	n.InvoiceIssued(context.Background(), invoices.Invoice{Number: "INV-1"})

	require.Empty(t, queue.mails)
	require.Empty(t, queue.pushes)
}

func TestNotifierInvoiceIssuedMail(t *testing.T) {
	queue := &recordingQueue{}
	n := NewNotifier(queue, slog.Default())

	n.InvoiceIssued(context.Background(), invoices.Invoice{
		Number:        "INV-XY12AB34",
		CustomerEmail: "billing@example.com",
		Total:         105.0,
		Currency:      "OMR",
		DueDate:       time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
	})

	require.Len(t, queue.mails, 1)
	require.Contains(t, queue.mails[0].Body, "105.000 OMR")
	require.Contains(t, queue.mails[0].Body, "2025-07-15")
}

func TestSendMailTaskRoundTrip(t *testing.T) {
	task, err := NewSendMailTask(notify.Mail{To: "a@b.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	require.Equal(t, TaskTypeSendMail, task.Type())

	var payload SendMailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "a@b.com", payload.Mail.To)
}

func TestHandleSendMailTaskBadPayload(t *testing.T) {
	d := NewDeliverer(SMTPConfig{}, "", "", slog.Default())
	err := d.HandleSendMailTask(context.Background(), asynq.NewTask(TaskTypeSendMail, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleSendMailTaskUnconfiguredSMTP(t *testing.T) {
	d := NewDeliverer(SMTPConfig{}, "", "", slog.Default())
	task, err := NewSendMailTask(notify.Mail{To: "a@b.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	require.NoError(t, d.HandleSendMailTask(context.Background(), task))
}
