package backendfake

import (
	"fmt"
	"time"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/internal/utils"
)

var (
	subjects = []string{"Calculus", "Linear Algebra", "Programming", "Databases", "Physics", "English", "History", "Networks"}
	teachers = []string{"Ivanova", "Petrov", "Smirnova", "Kuznetsov"}
	kinds    = []string{"lecture", "seminar", "lab"}

	// Pair start times as offsets from midnight
	slotStarts = []time.Duration{9 * time.Hour, 10*time.Hour + 40*time.Minute, 12*time.Hour + 40*time.Minute, 14*time.Hour + 20*time.Minute}
)

const slotLength = 90 * time.Minute

// timetable derives a stable weekday timetable from the group number. Weekends
// and users without a group have no lessons.
func timetable(group *int, date time.Time) api.DaySchedule {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	out := api.DaySchedule{Date: day.Format(time.DateOnly), Group: utils.Copy(group), Lessons: []api.Lesson{}}
	if group == nil || day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		return out
	}

	g := *group
	weekday := int(day.Weekday())
	count := 2 + (g+weekday)%3
	for i := 0; i < count; i++ {
		seed := g/7 + weekday*3 + i
		start := day.Add(slotStarts[i])
		out.Lessons = append(out.Lessons, api.Lesson{
			Subject: subjects[seed%len(subjects)],
			Teacher: teachers[(seed+g)%len(teachers)],
			Room:    roomFor(seed),
			Kind:    kinds[(seed+i)%len(kinds)],
			Start:   start,
			End:     start.Add(slotLength),
		})
	}
	return out
}

func roomFor(seed int) string {
	return fmt.Sprintf("%c-%d", 'A'+seed%4, 100+seed%30*7)
}
