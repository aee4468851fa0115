package models

import "time"

// ResearchProject is a research topic shared by its members.
type ResearchProject struct {
	ID             string    `db:"id" json:"id"`
	ProjectName    string    `db:"project_name" json:"project_name" validate:"required,max=200"`
	Level          Level     `db:"project_level" json:"project_level" validate:"required,level"`
	CompletionDate string    `db:"completion_date" json:"completion_date" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ProjectMember links a teacher to a project. The leader always has MemberRank 1.
type ProjectMember struct {
	ID         string    `db:"id" json:"id"`
	ProjectID  string    `db:"project_id" json:"project_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	IsLeader   bool      `db:"is_leader" json:"is_leader"`
	MemberRank int       `db:"member_rank" json:"member_rank"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ProjectMemberDetail joins a member row with the teacher name.
type ProjectMemberDetail struct {
	ProjectMember
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// TeacherProject is a project as seen from one member.
type TeacherProject struct {
	ResearchProject
	IsLeader   bool `db:"is_leader" json:"is_leader"`
	MemberRank int  `db:"member_rank" json:"member_rank"`
}
