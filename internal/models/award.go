package models

import "time"

// Award is a commendation that may be shared by several teachers.
type Award struct {
	ID        string    `db:"id" json:"id"`
	AwardName string    `db:"award_name" json:"award_name" validate:"required,max=200"`
	Level     Level     `db:"award_level" json:"award_level" validate:"required,level"`
	AwardUnit string    `db:"award_unit" json:"award_unit" validate:"max=200"`
	AwardDate string    `db:"award_date" json:"award_date" validate:"omitempty,datetime=2006-01-02"`
	AwardType string    `db:"award_type" json:"award_type" validate:"max=50"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AwardRecipient links a teacher to an award; Rank 1 is the first-listed recipient.
type AwardRecipient struct {
	ID        string    `db:"id" json:"id"`
	AwardID   string    `db:"award_id" json:"award_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Rank      int       `db:"rank" json:"rank"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AwardRecipientDetail joins a recipient row with the teacher name.
type AwardRecipientDetail struct {
	AwardRecipient
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// TeacherAward is an award as seen from one recipient.
type TeacherAward struct {
	Award
	Rank int `db:"rank" json:"rank"`
}

// AwardTypeTeachingCompetition marks awards won in teaching competitions.
const AwardTypeTeachingCompetition = "teaching_competition"
