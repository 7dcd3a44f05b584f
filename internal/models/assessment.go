package models

import (
	"time"
)

type Assessment struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	TenantID string `json:"tenant_id" gorm:"not null;index;size:64"`
	Title    string `json:"title" gorm:"not null;size:200"`

	// ItemIDs is the ordered list of item references graded on submit.
	ItemIDs []string `json:"item_ids" gorm:"serializer:json;type:jsonb"`

	// AllowedAttempts is the assessment-level quota; a cohort assignment may
	// override it. Nil means unlimited.
	AllowedAttempts *int `json:"allowed_attempts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// Cohort groups learners and grants them access to assessments, optionally
// with per-assessment windows and quota overrides.
type Cohort struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	TenantID string `json:"tenant_id" gorm:"not null;index;size:64"`
	Name     string `json:"name" gorm:"not null;size:200"`

	LearnerIDs    []string           `json:"learner_ids" gorm:"serializer:json;type:jsonb"`
	AssessmentIDs []string           `json:"assessment_ids" gorm:"serializer:json;type:jsonb"`
	Assignments   []CohortAssignment `json:"assignments" gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Cohort) TableName() string {
	return "cohorts"
}

type CohortAssignment struct {
	AssessmentID    string     `json:"assessment_id"`
	AllowedAttempts *int       `json:"allowed_attempts,omitempty"`
	AvailableFrom   *time.Time `json:"available_from,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
}

// AssignmentFor returns the assignment for an assessment, if the cohort
// defines one.
func (c *Cohort) AssignmentFor(assessmentID string) *CohortAssignment {
	for i := range c.Assignments {
		if c.Assignments[i].AssessmentID == assessmentID {
			return &c.Assignments[i]
		}
	}
	return nil
}

// Includes reports whether the cohort grants access to the assessment.
func (c *Cohort) Includes(assessmentID string) bool {
	for _, id := range c.AssessmentIDs {
		if id == assessmentID {
			return true
		}
	}
	return false
}
