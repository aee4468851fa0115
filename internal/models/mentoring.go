package models

import "time"

// Mentoring pairs a mentor with an apprentice teacher.
type Mentoring struct {
	ID           string    `db:"id" json:"id"`
	MentorID     string    `db:"teacher_id" json:"mentor_id" validate:"required"`
	ApprenticeID string    `db:"apprentice_id" json:"apprentice_id" validate:"required,nefield=MentorID"`
	StartDate    string    `db:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string    `db:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Achievements string    `db:"achievements" json:"achievements" validate:"max=2000"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MentoringDetail adds both participants' names.
type MentoringDetail struct {
	Mentoring
	MentorName     string `db:"mentor_name" json:"mentor_name"`
	ApprenticeName string `db:"apprentice_name" json:"apprentice_name"`
}
