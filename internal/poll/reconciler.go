package poll

import (
	"github.com/fetchq/fetchq/internal/model"
	"github.com/fetchq/fetchq/internal/registry"
)

// Reconciler merges status snapshots into the job registry.
type Reconciler struct {
	registry *registry.Registry
}

// NewReconciler creates a reconciler writing into reg.
func NewReconciler(reg *registry.Registry) *Reconciler {
	return &Reconciler{registry: reg}
}

// Reconcile applies one snapshot and reports whether polling should
// continue. Updates are applied before errors: when the same id appears in
// both channels of one snapshot, the error wins and the job ends up
// Errored. When the snapshot reports global completion, every remaining
// live job is flipped to Finished and false is returned.
func (r *Reconciler) Reconcile(snapshot model.StatusSnapshot) bool {
	for _, update := range snapshot.Updates {
		r.registry.Upsert(update)
	}
	for _, jobErr := range snapshot.Errors {
		r.registry.AttachError(jobErr.ID, jobErr.Message)
	}

	if snapshot.Finished {
		r.registry.FinishAll()
		return false
	}
	return true
}
