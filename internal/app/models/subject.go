package models

// Subject defines the catalog subject model based on the 'subjects' table
type Subject struct {
	ID      int64  `json:"id" db:"id" example:"1"`            // Unique identifier for the subject
	Code    string `json:"code" db:"code" example:"MAT101"`   // Unique human-readable subject code
	Name    string `json:"name" db:"name" example:"Calculus"` // Subject name
	Credits int    `json:"credits" db:"credits" example:"6"`  // Credit value, non-negative

	// Edge sets (populated by the catalog, not stored on the row)
	Prerequisites []int64 `json:"prerequisites"` // IDs of subjects that must be completed first
	Dependents    []int64 `json:"dependents"`    // IDs of subjects this subject is a prerequisite for
}
