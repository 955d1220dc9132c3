package domain_test

import (
	"testing"

	"github.com/procureflow/budget_control_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStrictestControlLevel(t *testing.T) {
	tests := []struct {
		name   string
		levels []domain.ControlLevel
		want   domain.ControlLevel
	}{
		{
			name:   "empty list resolves to NONE",
			levels: nil,
			want:   domain.ControlNone,
		},
		{
			name:   "advisory beats none",
			levels: []domain.ControlLevel{domain.ControlAdvisory, domain.ControlNone},
			want:   domain.ControlAdvisory,
		},
		{
			name:   "absolute beats everything",
			levels: []domain.ControlLevel{domain.ControlTrackOnly, domain.ControlAbsolute, domain.ControlAdvisory},
			want:   domain.ControlAbsolute,
		},
		{
			name:   "single level",
			levels: []domain.ControlLevel{domain.ControlTrackOnly},
			want:   domain.ControlTrackOnly,
		},
		{
			name:   "track only beats none",
			levels: []domain.ControlLevel{domain.ControlNone, domain.ControlTrackOnly, domain.ControlNone},
			want:   domain.ControlTrackOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.StrictestControlLevel(tt.levels))
		})
	}
}

func TestControlLevel_IsValid(t *testing.T) {
	assert.True(t, domain.ControlNone.IsValid())
	assert.True(t, domain.ControlTrackOnly.IsValid())
	assert.True(t, domain.ControlAdvisory.IsValid())
	assert.True(t, domain.ControlAbsolute.IsValid())
	assert.False(t, domain.ControlLevel("WARNING").IsValid())
	assert.False(t, domain.ControlLevel("").IsValid())
}

func TestControlLevel_Priority(t *testing.T) {
	assert.Greater(t, domain.ControlAbsolute.Priority(), domain.ControlAdvisory.Priority())
	assert.Greater(t, domain.ControlAdvisory.Priority(), domain.ControlTrackOnly.Priority())
	assert.Greater(t, domain.ControlTrackOnly.Priority(), domain.ControlNone.Priority())
	assert.Equal(t, 0, domain.ControlLevel("bogus").Priority())
}
