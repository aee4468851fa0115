package repository

// Table describes a teacher-owned record table for the generic repository.
type Table struct {
	Name    string
	Columns []string // payload columns, excluding id, teacher_id and timestamps
	OrderBy string   // natural date ordering, most recent first
	// DateColumn is the column date-range searches apply to; empty disables them.
	DateColumn string
	// Artifact names a column holding an artifact reference, if any.
	Artifact string
}

// Dependent is a table holding rows that must go when the parent row is deleted.
type Dependent struct {
	Table   string
	Columns []string // columns referencing the parent id
	// Artifact names a column whose references become orphaned with the rows.
	Artifact string
}

var (
	TitleRecords = Table{
		Name:       "title_records",
		Columns:    []string{"title", "obtain_date", "post", "appointment_date"},
		OrderBy:    "obtain_date DESC",
		DateColumn: "obtain_date",
	}
	EducationRecords = Table{
		Name:       "education_records",
		Columns:    []string{"edu_type", "degree", "institution", "obtain_date", "scan_ref"},
		OrderBy:    "obtain_date DESC",
		DateColumn: "obtain_date",
		Artifact:   "scan_ref",
	}
	WorkExperiences = Table{
		Name:       "work_experiences",
		Columns:    []string{"start_date", "end_date", "organization", "position", "description"},
		OrderBy:    "start_date DESC",
		DateColumn: "start_date",
	}
	TeachingRecords = Table{
		Name:       "teaching_records",
		Columns:    []string{"academic_year", "semester", "subject", "classes", "student_count", "weekly_hours"},
		OrderBy:    "academic_year DESC, semester DESC",
	}
	EducationWorks = Table{
		Name:       "education_work",
		Columns:    []string{"academic_year", "semester", "work_type", "description"},
		OrderBy:    "academic_year DESC, semester DESC",
	}
	PublicLessons = Table{
		Name:       "public_lessons",
		Columns:    []string{"lesson_name", "lesson_scope", "lesson_date"},
		OrderBy:    "lesson_date DESC",
		DateColumn: "lesson_date",
	}
	Papers = Table{
		Name:       "papers",
		Columns:    []string{"paper_title", "journal_name", "paper_level", "publish_date"},
		OrderBy:    "publish_date DESC",
		DateColumn: "publish_date",
	}
	StudentCompetitions = Table{
		Name:       "student_competitions",
		Columns:    []string{"competition_name", "winner_count", "award_level", "competition_date"},
		OrderBy:    "competition_date DESC",
		DateColumn: "competition_date",
	}
	ProfessionalLeaderships = Table{
		Name:       "professional_leadership",
		Columns:    []string{"leadership_type", "description", "start_date", "end_date"},
		OrderBy:    "start_date DESC",
		DateColumn: "start_date",
	}
	ExamResults = Table{
		Name:       "exam_results",
		Columns:    []string{"exam_name", "exam_date", "rank", "class_average"},
		OrderBy:    "exam_date DESC",
		DateColumn: "exam_date",
	}
)

// ownedTables lists every single-owner record table.
var ownedTables = []Table{
	TitleRecords,
	EducationRecords,
	WorkExperiences,
	TeachingRecords,
	EducationWorks,
	PublicLessons,
	Papers,
	StudentCompetitions,
	ProfessionalLeaderships,
	ExamResults,
}

// relationTables are link tables whose rows reference a teacher without being owned records.
var relationTables = []Dependent{
	{Table: "award_recipients", Columns: []string{"teacher_id"}},
	{Table: "project_members", Columns: []string{"teacher_id"}},
	{Table: "mentoring", Columns: []string{"teacher_id", "apprentice_id"}},
}

// sharedTables hold entities that outlive any single teacher.
var sharedTables = []string{"awards", "research_projects"}

// dependents maps a parent table to the tables that must be emptied before it.
var dependents = map[string][]Dependent{
	TeachersTable: teacherDependents(),
}

func teacherDependents() []Dependent {
	deps := make([]Dependent, 0, len(ownedTables)+len(relationTables))
	for _, t := range ownedTables {
		deps = append(deps, Dependent{Table: t.Name, Columns: []string{"teacher_id"}, Artifact: t.Artifact})
	}
	return append(deps, relationTables...)
}

// Dependents returns the tables referencing parent, in deletion order.
func Dependents(parent string) []Dependent {
	deps := dependents[parent]
	out := make([]Dependent, len(deps))
	copy(out, deps)
	return out
}

// TableNames lists every table the schema provisions.
func TableNames() []string {
	names := []string{TeachersTable}
	for _, t := range ownedTables {
		names = append(names, t.Name)
	}
	names = append(names, sharedTables...)
	for _, d := range relationTables {
		names = append(names, d.Table)
	}
	return names
}
