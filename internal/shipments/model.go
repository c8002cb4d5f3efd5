package shipments

import (
	"time"

	"github.com/tawreed/tawreed/internal/freight"
)

// Stage is one step of the shipment journey.
type Stage string

const (
	StageReceivedFromSupplier     Stage = "received_from_supplier"
	StageProcessing               Stage = "processing"
	StagePendingPartnerAcceptance Stage = "pending_partner_acceptance"
	StageInTransit                Stage = "in_transit"
	StageCustoms                  Stage = "customs"
	StageReceivedAtWarehouse      Stage = "received_at_warehouse"
	StageOutForDelivery           Stage = "out_for_delivery"
	StageDelivered                Stage = "delivered"
	StageCompleted                Stage = "completed"

	// StageRejected absorbs the shipment from any non-terminal stage.
	StageRejected Stage = "rejected"
)

// stageOrder is the forward sequence. Rejected sits outside it.
var stageOrder = []Stage{
	StageReceivedFromSupplier,
	StageProcessing,
	StagePendingPartnerAcceptance,
	StageInTransit,
	StageCustoms,
	StageReceivedAtWarehouse,
	StageOutForDelivery,
	StageDelivered,
	StageCompleted,
}

// Stages returns the ordered journey, excluding rejected.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

func stageIndex(s Stage) int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether the shipment can move no further.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageRejected
}

// Next returns the following stage, or empty when none exists.
func (s Stage) Next() Stage {
	i := stageIndex(s)
	if i < 0 || i+1 >= len(stageOrder) {
		return ""
	}
	return stageOrder[i+1]
}

// CanTransition allows exactly one forward step, or a jump to rejected from
// any non-terminal stage. Everything else fails closed.
func CanTransition(from, to Stage) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StageRejected {
		return stageIndex(from) >= 0
	}
	return from.Next() == to
}

// StageState is how a stage renders on the tracking timeline.
type StageState string

const (
	StateCompleted StageState = "completed"
	StateCurrent   StageState = "current"
	StatePending   StageState = "pending"
)

// TimelineEntry is one rendered row of the tracking view.
type TimelineEntry struct {
	Stage     Stage      `json:"stage"`
	State     StageState `json:"state"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Shipment is a tracked consignment. Milestones records when each stage was
// entered; rejection keeps the prior milestones intact.
type Shipment struct {
	ID            int64               `json:"id"`
	Reference     string              `json:"reference"`
	QuoteID       *int64              `json:"quote_id,omitempty"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	Mode          freight.Mode        `json:"mode"`
	Status        Stage               `json:"status"`
	Milestones    map[Stage]time.Time `json:"milestones"`
	PartnerID     *int64              `json:"partner_id,omitempty"`
	DriverName    string              `json:"driver_name,omitempty"`
	Paid          bool                `json:"paid"`
	Amount        float64             `json:"amount"`
	Currency      string              `json:"currency"`
	CreatedBy     string              `json:"created_by"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Timeline renders every stage relative to the current one. A rejected
// shipment shows completed milestones up to the rejection point and nothing
// current.
func (s Shipment) Timeline() []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(stageOrder))
	current := stageIndex(s.Status)
	for i, stage := range stageOrder {
		entry := TimelineEntry{Stage: stage, State: StatePending}
		if s.Status == StageRejected {
			if _, ok := s.Milestones[stage]; ok {
				entry.State = StateCompleted
			}
		} else if i < current {
			entry.State = StateCompleted
		} else if i == current {
			entry.State = StateCurrent
		}
		if ts, ok := s.Milestones[stage]; ok {
			t := ts
			entry.Timestamp = &t
		}
		entries = append(entries, entry)
	}
	return entries
}
