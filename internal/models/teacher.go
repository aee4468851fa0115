package models

import (
	"time"

	"github.com/noah-isme/teacher-archive/pkg/storage"
)

// Teacher is the aggregate root of one archive.
type Teacher struct {
	ID              string               `db:"id" json:"id"`
	Name            string               `db:"name" json:"name" validate:"required,max=100"`
	Gender          string               `db:"gender" json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate       string               `db:"birth_date" json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Ethnicity       string               `db:"ethnicity" json:"ethnicity" validate:"max=50"`
	Hometown        string               `db:"hometown" json:"hometown" validate:"max=100"`
	IDNumber        string               `db:"id_number" json:"id_number" validate:"required,max=32"`
	PhotoRef        *storage.ArtifactRef `db:"photo_ref" json:"photo_ref,omitempty"`
	PartyJoinDate   string               `db:"party_join_date" json:"party_join_date" validate:"omitempty,datetime=2006-01-02"`
	WorkStartDate   string               `db:"work_start_date" json:"work_start_date" validate:"omitempty,datetime=2006-01-02"`
	HealthStatus    string               `db:"health_status" json:"health_status" validate:"max=50"`
	TeachingSubject string               `db:"teaching_subject" json:"teaching_subject" validate:"max=50"`
	CurrentPosition string               `db:"current_position" json:"current_position" validate:"max=100"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures search options for listing teachers.
type TeacherFilter struct {
	Search    string
	Subject   string
	Gender    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
