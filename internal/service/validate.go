package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/todo-tracker/internal/model"
)

const (
	maxNameWords        = 30
	maxDescriptionWords = 150
)

func validateName(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if wordCount(value) > maxNameWords {
		return fmt.Errorf("%w: name must be at most %d words", ErrValidation, maxNameWords)
	}
	return nil
}

func validateDescription(value string) error {
	if wordCount(value) > maxDescriptionWords {
		return fmt.Errorf("%w: description must be at most %d words", ErrValidation, maxDescriptionWords)
	}
	return nil
}

// normalizeStatus maps a blank status to todo, otherwise trims and
// lower-cases the value and requires one of todo/doing/done.
func normalizeStatus(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return model.StatusTodo, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case model.StatusTodo, model.StatusDoing, model.StatusDone:
		return normalized, nil
	}
	return "", fmt.Errorf("%w: status must be one of todo, doing, done", ErrValidation)
}

// parseDeadline parses a YYYY-MM-DD deadline. A blank value means no
// deadline. Dates strictly before today are rejected.
func parseDeadline(value string) (*model.Date, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: deadline must be a YYYY-MM-DD date", ErrValidation)
	}
	d := model.DateOf(parsed)
	if d.Before(model.Today().Time) {
		return nil, fmt.Errorf("%w: deadline cannot be in the past", ErrValidation)
	}
	return &d, nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// Name uniqueness is a case-sensitive exact match. The exclude id lets
// edits keep their current name; ids start at 1, so 0 excludes nothing.
func projectNameTaken(projects []model.Project, name string, excludeID int64) bool {
	for _, p := range projects {
		if p.ID != excludeID && p.Name == name {
			return true
		}
	}
	return false
}

func taskNameTaken(tasks []model.Task, name string, excludeID int64) bool {
	for _, t := range tasks {
		if t.ID != excludeID && t.Name == name {
			return true
		}
	}
	return false
}
