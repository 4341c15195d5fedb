package tasks

import (
	"fmt"

	"aniq/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	PhaseFetchCatalog Phase = iota
	PhaseFetchList
	PhaseSample
	PhasePlan
	PhaseMutate
	PhasePrint
)

func (p Phase) String() string {
	switch p {
	case PhaseFetchCatalog:
		return "fetch_catalog"
	case PhaseFetchList:
		return "fetch_list"
	case PhaseSample:
		return "sample"
	case PhasePlan:
		return "plan"
	case PhaseMutate:
		return "mutate"
	case PhasePrint:
		return "print"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchCatalogUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded catalog snapshot (%d entries)", count),
	}
}

func fetchListUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchList,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching media list for %s...", username),
	}
}

func sampleUpdate(src, dest string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseSample,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sampled %d entries from %s into %s", count, src, dest),
	}
}

func planUpdate(plan *models.MutationPlan) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhasePlan,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Planned %d mutations (%d already up to date)", len(plan.Targets), len(plan.Skipped)),
		Data:    plan,
	}
}

func mutateUpdate(step, total int, target models.ListEntryTarget) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseMutate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, target.Kind, target.Title),
		Data:    target,
	}
}

func mutateFailedUpdate(step, total int, target models.ListEntryTarget, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseMutate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s %s: %v", step, total, target.Kind, target.Title, err),
		Data:    target,
	}
}
