package credit

import (
	"context"
	"time"

	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// Override is the audit fact recorded when a blocked confirmation proceeds
// anyway. The ledger still posts normally; this is evidence, not a gate.
type Override struct {
	AccountID  id.ID       `json:"accountId"`
	DocumentID id.ID       `json:"documentId"`
	Projected  types.Money `json:"projected"`
	Limit      types.Money `json:"limit"`
	Reason     string      `json:"reason"`
	ApprovedBy string      `json:"approvedBy"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// OverrideRecorder persists override audit records.
// Implemented by the audit log store.
type OverrideRecorder interface {
	RecordOverride(ctx context.Context, o Override) error
}
