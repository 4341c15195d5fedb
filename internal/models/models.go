// package models defines the data model for the aniq media-list pipeline
package models

import (
	"fmt"
	"strings"
)

// Status is an AniList media list status.
type Status string

const (
	StatusPlanning  Status = "PLANNING"
	StatusCurrent   Status = "CURRENT"
	StatusCompleted Status = "COMPLETED"
	StatusPaused    Status = "PAUSED"
	StatusDropped   Status = "DROPPED"
	StatusRepeating Status = "REPEATING"
)

// ParseStatus validates and normalizes a status string (case-insensitive).
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(s)) {
	case StatusPlanning:
		return StatusPlanning, nil
	case StatusCurrent:
		return StatusCurrent, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusPaused:
		return StatusPaused, nil
	case StatusDropped:
		return StatusDropped, nil
	case StatusRepeating:
		return StatusRepeating, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// MediaRecord represents a single catalog entry (an anime) with the
// attributes sampling and filtering operate on. Records are read-only once
// loaded from the catalog snapshot or the remote service.
type MediaRecord struct {
	ID         int      // AniList media ID, unique per catalog entry
	Title      string   // Romaji title
	Year       int      // Season year (0 if unknown)
	Popularity int      // Popularity percentile, 0-100, lower = more popular
	Genres     []string // Genre tags
	Format     string   // TV, MOVIE, OVA, ...
	Episodes   int      // Episode count (0 if unknown)
}

// HasGenre reports whether the record carries the given genre tag
// (case-insensitive).
func (m MediaRecord) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// ListEntry is one entry on a user's remote media list.
type ListEntry struct {
	EntryID int    // MediaList entry ID (per-user, needed for updates/deletes)
	MediaID int    // Catalog media ID
	Title   string // Romaji title, for display
	Status  Status
}

// SampleSpec configures a sampling operation. All configured predicates must
// hold for a record to be eligible (pure conjunction); nil pointer fields are
// no-ops. Genres require the record to carry every listed tag.
type SampleSpec struct {
	MaxPopularity *int     // Keep records with Popularity <= this percentile
	MinYear       *int     // Keep records with Year >= this
	MaxYear       *int     // Keep records with Year <= this
	Genres        []string // Keep records carrying all of these tags
	Size          *int     // Max records to return; nil = all remaining
	Offset        int      // Records to skip in sampled order
	Seed          *int64   // Deterministic ordering seed; nil = process-local
}

// MutationKind distinguishes the remote writes a reconciler can issue.
type MutationKind int

const (
	MutationUpsert MutationKind = iota
	MutationRemove
)

func (k MutationKind) String() string {
	switch k {
	case MutationUpsert:
		return "upsert"
	case MutationRemove:
		return "remove"
	default:
		return ""
	}
}

// ListEntryTarget is a desired (media, status) pair produced when a
// collection is committed to the remote list.
type ListEntryTarget struct {
	MediaID int
	EntryID int // Remote entry ID when the media already exists on the list
	Title   string
	Status  Status
	Kind    MutationKind
}

// MutationPlan is the ordered sequence of remote writes needed to align the
// user's list with a target collection. Upserts come first in target order,
// removals last.
type MutationPlan struct {
	Targets []ListEntryTarget
	Skipped []ListEntryTarget // Already correct remotely, no write needed
}

// Outcome is the per-identifier result of executing one planned mutation.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return ""
	}
}

// MutationResult records what happened to a single identifier.
type MutationResult struct {
	MediaID int
	Title   string
	Kind    MutationKind
	Outcome Outcome
	Err     error // Non-nil only when Outcome is OutcomeFailed
}

// MutationReport lists, per identifier, the outcome of a commit.
type MutationReport struct {
	Results []MutationResult
}

// Succeeded returns the number of successful mutations.
func (r *MutationReport) Succeeded() int { return r.count(OutcomeSucceeded) }

// Failed returns the number of permanently failed mutations.
func (r *MutationReport) Failed() int { return r.count(OutcomeFailed) }

// Skipped returns the number of no-op entries.
func (r *MutationReport) Skipped() int { return r.count(OutcomeSkipped) }

func (r *MutationReport) count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
