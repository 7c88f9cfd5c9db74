package composition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// FaultKind classifies a recoverable composition fault.
type FaultKind string

const (
	// FaultLookupFailure: a requested part, slot or color layer was not found.
	FaultLookupFailure FaultKind = "lookup_failure"
	// FaultCategoryMismatch: the part cannot occupy the target slot.
	FaultCategoryMismatch FaultKind = "category_mismatch"
	// FaultBodyIncompatible: the part does not support the current body type.
	FaultBodyIncompatible FaultKind = "body_incompatible"
	// FaultSnapshotPartMissing: a snapshot names a part absent from the catalog.
	FaultSnapshotPartMissing FaultKind = "snapshot_part_missing"
)

// Sentinel errors matched by Fault via errors.Is.
var (
	ErrLookupFailure       = errors.New("part lookup failed")
	ErrCategoryMismatch    = errors.New("part category does not match slot")
	ErrBodyIncompatible    = errors.New("part does not support body type")
	ErrSnapshotPartMissing = errors.New("snapshot part missing from catalog")
)

// Fault describes one recovered fault. Faults never abort an operation; the
// engine falls back and records what happened.
type Fault struct {
	Kind    FaultKind
	Slot    part.Slot
	Part    string
	Package string
	Body    part.BodyType
	// Substitute names the part used instead, or "" when the slot was left
	// unassigned or unchanged.
	Substitute string
	Detail     string
}

// Error implements error.
func (f Fault) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s on %s", f.Kind, f.Slot)
	if f.Part != "" {
		fmt.Fprintf(&b, ": part %q", f.Part)
		if f.Package != "" {
			fmt.Fprintf(&b, " (package %q)", f.Package)
		}
	}
	if f.Substitute != "" {
		fmt.Fprintf(&b, ", substituted by %q", f.Substitute)
	}
	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}
	return b.String()
}

// Unwrap returns the sentinel error for the fault's kind.
func (f Fault) Unwrap() error {
	switch f.Kind {
	case FaultLookupFailure:
		return ErrLookupFailure
	case FaultCategoryMismatch:
		return ErrCategoryMismatch
	case FaultBodyIncompatible:
		return ErrBodyIncompatible
	case FaultSnapshotPartMissing:
		return ErrSnapshotPartMissing
	}
	return nil
}

// Report lists the faults recovered during one engine operation.
type Report struct {
	Faults []Fault
}

// OK reports whether the operation completed without faults.
func (r Report) OK() bool {
	return len(r.Faults) == 0
}

// Has reports whether any fault of kind was recorded.
func (r Report) Has(kind FaultKind) bool {
	for _, f := range r.Faults {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Count returns the number of faults of kind.
func (r Report) Count(kind FaultKind) int {
	n := 0
	for _, f := range r.Faults {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Err returns nil when OK, otherwise an error wrapping every fault.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Faults))
	for i, f := range r.Faults {
		errs[i] = f
	}
	return errors.Join(errs...)
}
