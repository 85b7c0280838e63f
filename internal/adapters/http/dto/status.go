package dto

import (
	"time"
)

// MaxUpcomingFires bounds the count query parameter of the schedule endpoint.
const MaxUpcomingFires = 48

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	State     string    `json:"state"`
	FirstFire FireTime  `json:"firstFire"`
	NextFire  *FireTime `json:"nextFire,omitempty"`
	Period    string    `json:"period"`

	LastCycle *CycleSummary `json:"lastCycle,omitempty"`

	Cycles   int `json:"cycles"`
	Failures int `json:"failures"`
	Skipped  int `json:"skipped"`
}

// CycleSummary describes the most recent publish cycle.
type CycleSummary struct {
	StartedAt   FireTime   `json:"startedAt"`
	Result      string     `json:"result"`
	Error       string     `json:"error,omitempty"`
	Duration    string     `json:"duration"`
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`
}

// FireTime renders one instant in UTC and in the reference zone.
type FireTime struct {
	UTC   time.Time `json:"utc"`
	Local string    `json:"local"`
}

// NewFireTime formats t for the reference zone loc.
func NewFireTime(t time.Time, loc *time.Location) FireTime {
	return FireTime{
		UTC:   t.UTC(),
		Local: t.In(loc).Format("2006-01-02 15:04:05 MST"),
	}
}

// ScheduleQuery is the query string of GET /api/v1/schedule.
type ScheduleQuery struct {
	Count int `form:"count" json:"count" validate:"omitempty,min=1,max=48"`
}

// ScheduleResponse lists upcoming fire times.
type ScheduleResponse struct {
	ReferenceZone string     `json:"referenceZone"`
	Period        string     `json:"period"`
	Fires         []FireTime `json:"fires"`
}

// CaptionQuery is the query string of GET /api/v1/caption.
// At defaults to the current time.
type CaptionQuery struct {
	At time.Time `form:"at" json:"at" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CaptionResponse is a rendered caption preview.
type CaptionResponse struct {
	At      time.Time `json:"at"`
	Caption string    `json:"caption"`
	Length  int       `json:"length"`
}
