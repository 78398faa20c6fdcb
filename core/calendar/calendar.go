package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/prodigy/core"
)

const dayLayout = "2006-01-02"

type Event struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Kind      string `json:"type"`
	ClassName string `json:"class_name,omitempty"`
}

// Day returns the calendar day of the event, or "" if Date is not a date.
func (e Event) Day() string {
	if len(e.Date) < len(dayLayout) {
		return ""
	}
	day := e.Date[:len(dayLayout)]
	if _, err := time.Parse(dayLayout, day); err != nil {
		return ""
	}
	return day
}

// Service talks to the calendar endpoint.
type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

// Events returns the due dates of the user's assignments.
func (svc *Service) Events(ctx context.Context) ([]Event, error) {
	events := make([]Event, 0)
	err := svc.api.Do(ctx, core.Get("/calendar"), &events)
	return events, err
}

// DayEvents are the events of one day.
type DayEvents struct {
	Day    string  `json:"day"`
	Events []Event `json:"events"`
}

// ByDay groups events by day, in chronological order. Undated events are dropped.
func ByDay(events []Event) []DayEvents {
	idx := make(map[string]int)
	days := make([]DayEvents, 0)
	for _, e := range events {
		day := e.Day()
		if day == "" {
			continue
		}
		i, ok := idx[day]
		if !ok {
			i = len(days)
			idx[day] = i
			days = append(days, DayEvents{Day: day})
		}
		days[i].Events = append(days[i].Events, e)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

// Month returns the events falling in the month of t.
func Month(events []Event, t time.Time) []Event {
	prefix := t.Format("2006-01")
	month := make([]Event, 0)
	for _, e := range events {
		if day := e.Day(); day != "" && day[:len(prefix)] == prefix {
			month = append(month, e)
		}
	}
	return month
}
