package ports

import (
	"context"
	"time"

	"github.com/arborhq/arbor/pkg/domain"
)

// PlanRecord is one persisted planning session: the accepted plan, the
// traversal record that ranks it, and the world state it was planned
// against. The record is what a later replanning call culls against.
type PlanRecord struct {
	ID        string       `json:"id"`
	Domain    string       `json:"domain,omitempty"`
	Plan      domain.Plan  `json:"plan"`
	MTR       domain.MTR   `json:"mtr"`
	State     domain.State `json:"state,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the record. Step parameters and state values
// are treated as immutable, so their maps are copied one level deep.
func (r *PlanRecord) Clone() *PlanRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Plan = make(domain.Plan, len(r.Plan))
	for i, step := range r.Plan {
		out.Plan[i] = step
		if step.Params != nil {
			params := make(map[string]any, len(step.Params))
			for k, v := range step.Params {
				params[k] = v
			}
			out.Plan[i].Params = params
		}
	}
	out.MTR = append(domain.MTR(nil), r.MTR...)
	if r.State != nil {
		out.State = r.State.Clone()
	}
	return &out
}

// PlanStore defines the interface for persisting plan records. Stores are
// plain persistence: they never stamp timestamps or mutate records; the
// session layer owns that.
type PlanStore interface {
	// Save persists the record under its ID, overwriting any previous
	// version.
	Save(ctx context.Context, rec *PlanRecord) error

	// Load retrieves the record for the given ID.
	// Returns domain.ErrPlanNotFound if no record exists.
	Load(ctx context.Context, id string) (*PlanRecord, error)

	// Delete removes the record for the given ID.
	// Returns domain.ErrPlanNotFound if no record exists.
	Delete(ctx context.Context, id string) error

	// List returns the stored record IDs in lexical order.
	List(ctx context.Context) ([]string, error)
}
