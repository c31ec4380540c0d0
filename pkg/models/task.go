package models

import (
	"strings"
	"time"
)

// TimestampFormat is the ISO-8601 layout used for every timestamp stored in
// state documents. Values are always written in UTC.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in TimestampFormat after converting it to UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

// ValidStatuses returns all valid status values in lifecycle order.
func ValidStatuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}
}

// IsValid reports whether s is one of the four task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	default:
		return false
	}
}

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriorities returns all valid priority values, highest first.
func ValidPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// IsValid reports whether p is one of the three priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// JoinStatuses renders statuses as a comma-separated list for messages.
func JoinStatuses(statuses []TaskStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Task is a single unit of work tracked in the project state document.
// Identifiers have the form task-<N> and are unique within a project.
type Task struct {
	ID            string     `yaml:"id" json:"id"`
	Title         string     `yaml:"title" json:"title"`
	Description   string     `yaml:"description,omitempty" json:"description,omitempty"`
	Status        TaskStatus `yaml:"status" json:"status"`
	Priority      Priority   `yaml:"priority" json:"priority"`
	CreatedAt     string     `yaml:"created_at" json:"created_at"`
	StartedAt     string     `yaml:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt   string     `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
	BlockedReason string     `yaml:"blocked_reason,omitempty" json:"blocked_reason,omitempty"`
}
