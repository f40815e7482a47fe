package entity

import "time"

// Request states
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusFulfilled = "fulfilled"
	RequestStatusRejected  = "rejected"
)

// Request priorities
const (
	RequestPriorityLow    = "low"
	RequestPriorityMedium = "medium"
	RequestPriorityHigh   = "high"
	RequestPriorityUrgent = "urgent"
)

// requestTransitions is the workflow graph. fulfilled and rejected are
// terminal; nothing leaves them.
var requestTransitions = map[string][]string{
	RequestStatusPending:  {RequestStatusApproved, RequestStatusRejected},
	RequestStatusApproved: {RequestStatusFulfilled, RequestStatusRejected},
}

// RequestTransitionAllowed reports whether changing from one status to the other is an edge of the
// workflow graph.
func RequestTransitionAllowed(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidRequestPriority reports whether p is a known priority.
func ValidRequestPriority(p string) bool {
	switch p {
	case RequestPriorityLow, RequestPriorityMedium, RequestPriorityHigh, RequestPriorityUrgent:
		return true
	}
	return false
}

// StockRequest asks for more of one item. Status only ever advances through
// the workflow graph; once terminal the record is immutable except for
// AdminNotes, which is append-only.
type StockRequest struct {
	ID                string     `json:"id" gorm:"primaryKey;size:32"`
	Code              string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	ItemID            string     `json:"item_id" gorm:"size:32;not null;index"`
	RequestedQuantity float64    `json:"requested_quantity" gorm:"type:decimal(12,4);not null"`
	Priority          string     `json:"priority" gorm:"size:20;not null;default:medium"`
	Status            string     `json:"status" gorm:"size:20;not null;default:pending;index"`
	RequestedBy       string     `json:"requested_by" gorm:"size:32;not null"`
	RequestedDate     time.Time  `json:"requested_date"`
	ApprovedBy        *string    `json:"approved_by" gorm:"size:32"`
	ApprovedDate      *time.Time `json:"approved_date"`
	FulfilledDate     *time.Time `json:"fulfilled_date"`
	AdminNotes        string     `json:"admin_notes" gorm:"type:text"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Item *InventoryItem `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (StockRequest) TableName() string {
	return "stock_requests"
}
