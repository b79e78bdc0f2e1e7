package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// markers emitted by drivers that do not translate unique violations
// into gorm.ErrDuplicatedKey.
var duplicateKeyMarkers = []string{
	"duplicate key value violates unique constraint", // postgres 23505
	"Error 1062",                                     // mysql
	"UNIQUE constraint failed",                       // sqlite
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
