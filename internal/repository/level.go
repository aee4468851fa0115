package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/teacher-archive/internal/models"
)

// levelRankSQL renders a CASE expression ranking column by administrative level, highest first.
func levelRankSQL(column string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for _, level := range models.Levels {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", level, level.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", len(models.Levels)+1)
	return b.String()
}
