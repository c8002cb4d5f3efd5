package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/tawreed/tawreed/internal/notify"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeSendMail delivers one transactional email.
	TaskTypeSendMail = "mail:send"
	// TaskTypeSendPush delivers one web-push notification.
	TaskTypeSendPush = "push:send"
	// TaskTypeInvoiceOverdueScan flips past-due invoices to overdue.
	TaskTypeInvoiceOverdueScan = "invoice:overdue_scan"
	// TaskTypeRatesExpire deactivates rate agreements past their validity.
	TaskTypeRatesExpire = "rates:expire"
)

// SendMailPayload is the mail:send task body.
type SendMailPayload struct {
	Mail notify.Mail `json:"mail"`
}

// NewSendMailTask constructs a mail:send task.
func NewSendMailTask(mail notify.Mail) (*asynq.Task, error) {
	data, err := json.Marshal(SendMailPayload{Mail: mail})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendMail, data), nil
}

// SendPushPayload is the push:send task body. Subscription identifies the
// browser endpoint registered by the client.
type SendPushPayload struct {
	Subscription string             `json:"subscription"`
	Payload      notify.PushPayload `json:"payload"`
}

// NewSendPushTask constructs a push:send task.
func NewSendPushTask(subscription string, payload notify.PushPayload) (*asynq.Task, error) {
	data, err := json.Marshal(SendPushPayload{Subscription: subscription, Payload: payload})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendPush, data), nil
}

// NewInvoiceOverdueScanTask constructs the scheduled overdue scan.
func NewInvoiceOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeInvoiceOverdueScan, nil)
}

// NewRatesExpireTask constructs the scheduled agreement expiry sweep.
func NewRatesExpireTask() *asynq.Task {
	return asynq.NewTask(TaskTypeRatesExpire, nil)
}
