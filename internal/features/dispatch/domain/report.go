package domain

// SubmissionStatus is the per-order outcome of the creation step.
type SubmissionStatus string

const (
	// SubmissionStatusCreated indicates the remote service accepted the order.
	SubmissionStatusCreated SubmissionStatus = "CREATED"
	// SubmissionStatusFailed indicates the creation call failed; the order is
	// excluded from optimization and path updates.
	SubmissionStatusFailed SubmissionStatus = "FAILED"
)

// SubmissionResult is the outcome of one order's creation attempt. The batch
// is a sequence of results, not an atomic unit: there is no all-or-nothing
// invariant.
type SubmissionResult struct {
	// CustomerName identifies the order for the operator.
	CustomerName string `json:"customer_name"`
	// OrderID is the remote identifier, 0 when creation failed.
	OrderID int64 `json:"order_id"`
	// Status is the creation outcome.
	Status SubmissionStatus `json:"status"`
	// Error is the failure reason, empty on success.
	Error string `json:"error,omitempty"`
}

// OptimizationRequest carries one resource group's route optimization call.
type OptimizationRequest struct {
	// OrderIDs are the created order ids in the group.
	OrderIDs []int64
	// Resource is the asset serving the group.
	Resource string
	// Departure is the epoch departure time (the first order's window start).
	Departure int64
}

// Report is the terminal artifact of a dispatch run.
type Report struct {
	// RunID uniquely identifies the run in logs and responses.
	RunID string `json:"run_id"`
	// Created and Failed count the per-order creation outcomes.
	Created int `json:"created"`
	Failed  int `json:"failed"`
	// Results lists one entry per submitted order, in submission order.
	Results []SubmissionResult `json:"results"`
	// OptimizationWarnings lists per-resource-group optimization failures;
	// affected groups keep their original stop order.
	OptimizationWarnings []string `json:"optimization_warnings,omitempty"`
	// PathUpdateWarnings lists per-order path update failures.
	PathUpdateWarnings []string `json:"path_update_warnings,omitempty"`
	// Orders is the full order batch with ids and sequence numbers
	// populated where the corresponding calls succeeded.
	Orders []*Order `json:"orders"`
}
