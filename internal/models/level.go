package models

import (
	"github.com/go-playground/validator/v10"
)

// Level is the administrative tier of an award, project, lesson or competition.
type Level string

const (
	LevelGlobal     Level = "global"
	LevelNational   Level = "national"
	LevelProvincial Level = "provincial"
	LevelMunicipal  Level = "municipal"
	LevelSchool     Level = "school"
)

// Levels lists every tier from highest to lowest.
var Levels = []Level{LevelGlobal, LevelNational, LevelProvincial, LevelMunicipal, LevelSchool}

// Rank orders levels: 1 is highest. Unknown levels sort after all known ones.
func (l Level) Rank() int {
	for i, known := range Levels {
		if l == known {
			return i + 1
		}
	}
	return len(Levels) + 1
}

// Valid reports whether l is a known tier.
func (l Level) Valid() bool {
	return l.Rank() <= len(Levels)
}

// NewValidator returns a validator with the archive's custom tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterValidations(v)
	return v
}

// RegisterValidations adds the "level" tag to v.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		return Level(fl.Field().String()).Valid()
	})
}
