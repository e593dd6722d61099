package service

import "errors"

// Error kinds surfaced to callers. Front ends match with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrProjectNotFound  = errors.New("project not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrDuplicateProject = errors.New("duplicate project name")
	ErrDuplicateTask    = errors.New("duplicate task name")
	ErrProjectLimit     = errors.New("project limit reached")
	ErrTaskLimit        = errors.New("task limit reached")
)
