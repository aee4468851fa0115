package models

// TeacherRollup aggregates archive counts for one teacher.
type TeacherRollup struct {
	TeacherID       string `db:"teacher_id" json:"teacher_id"`
	Name            string `db:"name" json:"name"`
	AwardCount      int    `db:"award_count" json:"award_count"`
	ClassCount      int    `db:"class_count" json:"class_count"`
	PaperCount      int    `db:"paper_count" json:"paper_count"`
	ProjectCount    int    `db:"project_count" json:"project_count"`
	ApprenticeCount int    `db:"apprentice_count" json:"apprentice_count"`
}

// AwardWinner is one recipient line of an award listing.
type AwardWinner struct {
	AwardID     string `db:"award_id" json:"award_id"`
	AwardName   string `db:"award_name" json:"award_name"`
	Level       Level  `db:"award_level" json:"award_level"`
	AwardType   string `db:"award_type" json:"award_type"`
	AwardDate   string `db:"award_date" json:"award_date"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	Rank        int    `db:"rank" json:"rank"`
}

// AwardWinnerFilter narrows award listings.
type AwardWinnerFilter struct {
	AwardType string
	Level     Level
	DateFrom  string
	DateTo    string
}

// CompetitionCoach is one coached student competition with its coach.
type CompetitionCoach struct {
	CompetitionID   string `db:"competition_id" json:"competition_id"`
	CompetitionName string `db:"competition_name" json:"competition_name"`
	Level           Level  `db:"award_level" json:"award_level"`
	CompetitionDate string `db:"competition_date" json:"competition_date"`
	WinnerCount     int    `db:"winner_count" json:"winner_count"`
	TeacherID       string `db:"teacher_id" json:"teacher_id"`
	TeacherName     string `db:"teacher_name" json:"teacher_name"`
}

// DistributionBucket counts teachers sharing one value.
type DistributionBucket struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// Distribution names the statistics offered by the report layer.
type Distribution string

const (
	DistributionTitle      Distribution = "title"
	DistributionDegree     Distribution = "degree"
	DistributionAwardLevel Distribution = "award_level"
	DistributionAgeBand    Distribution = "age_band"
)

// EducationScanStatus reports whether an education record's scan is present on disk.
type EducationScanStatus struct {
	Record  EducationRecord `json:"record"`
	HasScan bool            `json:"has_scan"`
}
