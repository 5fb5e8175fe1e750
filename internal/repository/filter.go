package repository

import (
	"slices"

	"github.com/google/uuid"

	"revision-runtime/backend/pkg/models"
)

// RevisionFilter narrows ListRevisions. Nil fields match everything.
type RevisionFilter struct {
	Type            *models.Type
	States          []models.State
	Categories      []string
	RevisionGroupID *uuid.UUID
	IDs             []uuid.UUID
	Names           []string
}

// SelectionEmptyOrContains reports whether selection is unset (nil) or
// contains value. An empty but non-nil selection matches nothing.
func SelectionEmptyOrContains[T comparable](selection []T, value T) bool {
	if selection == nil {
		return true
	}
	return slices.Contains(selection, value)
}

// CriterionUnsetOrMatches reports whether criterion is unset or equal to value.
func CriterionUnsetOrMatches[T comparable](criterion *T, value T) bool {
	if criterion == nil {
		return true
	}
	return *criterion == value
}

// Matches reports whether tr passes every criterion of the filter.
func (f RevisionFilter) Matches(tr *models.TransformationRevision) bool {
	return CriterionUnsetOrMatches(f.Type, tr.Type) &&
		CriterionUnsetOrMatches(f.RevisionGroupID, tr.RevisionGroupID) &&
		SelectionEmptyOrContains(f.States, tr.State) &&
		SelectionEmptyOrContains(f.Categories, tr.Category) &&
		SelectionEmptyOrContains(f.IDs, tr.ID) &&
		SelectionEmptyOrContains(f.Names, tr.Name)
}
