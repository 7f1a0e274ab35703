package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.Local)
}

func TestSchedule_Allows(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		now      time.Time
		want     bool
	}{
		{
			name:     "disabled always allows",
			schedule: Schedule{Enabled: false, Start: "09:00", End: "17:00"},
			now:      at(3, 0),
			want:     true,
		},
		{
			name:     "daytime window inside",
			schedule: Schedule{Enabled: true, Start: "09:00", End: "17:00"},
			now:      at(10, 0),
			want:     true,
		},
		{
			name:     "daytime window outside",
			schedule: Schedule{Enabled: true, Start: "09:00", End: "17:00"},
			now:      at(18, 0),
			want:     false,
		},
		{
			name:     "daytime window start inclusive",
			schedule: Schedule{Enabled: true, Start: "09:00", End: "17:00"},
			now:      at(9, 0),
			want:     true,
		},
		{
			name:     "daytime window end exclusive",
			schedule: Schedule{Enabled: true, Start: "09:00", End: "17:00"},
			now:      at(17, 0),
			want:     false,
		},
		{
			name:     "overnight window late evening",
			schedule: Schedule{Enabled: true, Start: "20:00", End: "06:00"},
			now:      at(23, 0),
			want:     true,
		},
		{
			name:     "overnight window early morning",
			schedule: Schedule{Enabled: true, Start: "20:00", End: "06:00"},
			now:      at(2, 30),
			want:     true,
		},
		{
			name:     "overnight window midday",
			schedule: Schedule{Enabled: true, Start: "20:00", End: "06:00"},
			now:      at(12, 0),
			want:     false,
		},
		{
			name:     "overnight window end boundary excluded",
			schedule: Schedule{Enabled: true, Start: "20:00", End: "06:00"},
			now:      at(6, 0),
			want:     false,
		},
		{
			name:     "equal start and end treated as overnight",
			schedule: Schedule{Enabled: true, Start: "08:00", End: "08:00"},
			now:      at(12, 0),
			want:     true,
		},
		{
			name:     "unparseable window allows",
			schedule: Schedule{Enabled: true, Start: "whenever", End: "06:00"},
			now:      at(12, 0),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.Allows(tt.now))
		})
	}
}

func TestSchedule_NextBoundary(t *testing.T) {
	s := Schedule{Enabled: true, Start: "20:00", End: "06:00"}

	next, ok := s.NextBoundary(at(12, 0))
	require.True(t, ok)
	assert.Equal(t, at(20, 0), next)

	next, ok = s.NextBoundary(at(21, 0))
	require.True(t, ok)
	assert.Equal(t, at(6, 0).AddDate(0, 0, 1), next)

	_, ok = Schedule{Enabled: false}.NextBoundary(at(12, 0))
	assert.False(t, ok)

	_, ok = Schedule{Enabled: true, Start: "junk", End: "06:00"}.NextBoundary(at(12, 0))
	assert.False(t, ok)
}
