package models

import (
	"testing"
	"time"
)

func TestResolveDutyStatus(t *testing.T) {
	clockIn := time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local)
	clockOut := time.Date(2024, 3, 11, 18, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		attendance *Attendance
		want       DutyStatus
	}{
		{
			name:       "нет записи за сегодня",
			attendance: nil,
			want:       DutyNotStarted,
		},
		{
			name:       "запись есть, отметок нет",
			attendance: &Attendance{},
			want:       DutyNotStarted,
		},
		{
			name:       "только приход",
			attendance: &Attendance{ClockIn: &clockIn},
			want:       DutyOnDuty,
		},
		{
			name:       "только уход",
			attendance: &Attendance{ClockOut: &clockOut},
			want:       DutyOffDuty,
		},
		{
			// Уход имеет приоритет: заполненные приход и уход
			// никогда не дают on_duty
			name:       "приход и уход",
			attendance: &Attendance{ClockIn: &clockIn, ClockOut: &clockOut},
			want:       DutyOffDuty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDutyStatus(tt.attendance); got != tt.want {
				t.Errorf("ResolveDutyStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
