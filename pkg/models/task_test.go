package models

import "testing"

func TestJoinStatuses(t *testing.T) {
	tests := []struct {
		name     string
		statuses []TaskStatus
		want     string
	}{
		{"none", nil, ""},
		{"one", []TaskStatus{StatusBlocked}, "blocked"},
		{"all", ValidStatuses(), "pending, in_progress, completed, blocked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinStatuses(tt.statuses); got != tt.want {
				t.Errorf("JoinStatuses = %q, want %q", got, tt.want)
			}
		})
	}
}
