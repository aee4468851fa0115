package models

import (
	"time"

	"github.com/noah-isme/teacher-archive/pkg/storage"
)

// RecordMeta holds the columns shared by every teacher-owned record.
type RecordMeta struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Meta exposes the shared columns to generic repositories.
func (m *RecordMeta) Meta() *RecordMeta {
	return m
}

// Owned is implemented by pointers to records that belong to exactly one teacher.
type Owned interface {
	Meta() *RecordMeta
}

// TitleRecord tracks a professional title and the post held under it.
type TitleRecord struct {
	RecordMeta
	Title           string `db:"title" json:"title" validate:"required,max=100"`
	ObtainDate      string `db:"obtain_date" json:"obtain_date" validate:"omitempty,datetime=2006-01-02"`
	Post            string `db:"post" json:"post" validate:"max=100"`
	AppointmentDate string `db:"appointment_date" json:"appointment_date" validate:"omitempty,datetime=2006-01-02"`
}

// EducationRecord is one degree or diploma, optionally with a scanned certificate.
type EducationRecord struct {
	RecordMeta
	EduType     string               `db:"edu_type" json:"edu_type" validate:"required,oneof=full_time part_time"`
	Degree      string               `db:"degree" json:"degree" validate:"required,max=50"`
	Institution string               `db:"institution" json:"institution" validate:"max=200"`
	ObtainDate  string               `db:"obtain_date" json:"obtain_date" validate:"omitempty,datetime=2006-01-02"`
	ScanRef     *storage.ArtifactRef `db:"scan_ref" json:"scan_ref,omitempty"`
}

// WorkExperience is one entry of the employment history.
type WorkExperience struct {
	RecordMeta
	StartDate    string `db:"start_date" json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `db:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Organization string `db:"organization" json:"organization" validate:"required,max=200"`
	Position     string `db:"position" json:"position" validate:"max=100"`
	Description  string `db:"description" json:"description" validate:"max=2000"`
}

// TeachingRecord captures the teaching load for one semester.
type TeachingRecord struct {
	RecordMeta
	AcademicYear string `db:"academic_year" json:"academic_year" validate:"required,max=20"`
	Semester     string `db:"semester" json:"semester" validate:"required,oneof=first second"`
	Subject      string `db:"subject" json:"subject" validate:"required,max=50"`
	Classes      string `db:"classes" json:"classes" validate:"required,max=200"`
	StudentCount int    `db:"student_count" json:"student_count" validate:"gte=0"`
	WeeklyHours  int    `db:"weekly_hours" json:"weekly_hours" validate:"gte=0,lte=80"`
}

// EducationWork records homeroom or other pastoral duties.
type EducationWork struct {
	RecordMeta
	AcademicYear string `db:"academic_year" json:"academic_year" validate:"required,max=20"`
	Semester     string `db:"semester" json:"semester" validate:"required,oneof=first second"`
	WorkType     string `db:"work_type" json:"work_type" validate:"required,max=50"`
	Description  string `db:"description" json:"description" validate:"max=2000"`
}

// PublicLesson is an open or demonstration lesson.
type PublicLesson struct {
	RecordMeta
	LessonName  string `db:"lesson_name" json:"lesson_name" validate:"required,max=200"`
	LessonScope string `db:"lesson_scope" json:"lesson_scope" validate:"omitempty,level"`
	LessonDate  string `db:"lesson_date" json:"lesson_date" validate:"omitempty,datetime=2006-01-02"`
}

// Paper is a published article.
type Paper struct {
	RecordMeta
	PaperTitle  string `db:"paper_title" json:"paper_title" validate:"required,max=300"`
	JournalName string `db:"journal_name" json:"journal_name" validate:"max=200"`
	PaperLevel  string `db:"paper_level" json:"paper_level" validate:"max=50"`
	PublishDate string `db:"publish_date" json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
}

// StudentCompetition records students coached to a competition award.
type StudentCompetition struct {
	RecordMeta
	CompetitionName string `db:"competition_name" json:"competition_name" validate:"required,max=200"`
	WinnerCount     int    `db:"winner_count" json:"winner_count" validate:"gte=0"`
	AwardLevel      string `db:"award_level" json:"award_level" validate:"omitempty,level"`
	CompetitionDate string `db:"competition_date" json:"competition_date" validate:"omitempty,datetime=2006-01-02"`
}

// ProfessionalLeadership is a leading role such as a subject lead or studio host.
type ProfessionalLeadership struct {
	RecordMeta
	LeadershipType string `db:"leadership_type" json:"leadership_type" validate:"required,max=100"`
	Description    string `db:"description" json:"description" validate:"max=2000"`
	StartDate      string `db:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `db:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ExamResult is a class result in a graded exam.
type ExamResult struct {
	RecordMeta
	ExamName     string  `db:"exam_name" json:"exam_name" validate:"required,max=200"`
	ExamDate     string  `db:"exam_date" json:"exam_date" validate:"omitempty,datetime=2006-01-02"`
	Rank         int     `db:"rank" json:"rank" validate:"gte=0"`
	ClassAverage float64 `db:"class_average" json:"class_average" validate:"gte=0"`
}

// RecordFilter narrows a record search. Keys of Equals and Contains are column names.
type RecordFilter struct {
	TeacherID string
	Equals    map[string]any
	Contains  map[string]string
	DateFrom  string
	DateTo    string
	Limit     int
	Offset    int
}
