package domain

import (
	"fmt"
	"strings"
	"time"
)

// DisplayZone describes one caption line: the IANA zone to project into and how to label it.
type DisplayZone struct {
	// ID is the IANA identifier, e.g. "Europe/London".
	ID string

	// Label is the short human label, e.g. "GB".
	Label string

	// Flag is an optional emoji prefix for the line.
	Flag string
}

// ZoneConversion is a reference instant projected into one display zone.
// Err is set when the zone could not be resolved; Local is then the zero time.
type ZoneConversion struct {
	Zone  DisplayZone
	Local time.Time
	Err   error
}

// OK reports whether the conversion succeeded.
func (c ZoneConversion) OK() bool {
	return c.Err == nil
}

// LoadZone resolves an IANA identifier to a location.
func LoadZone(id string) (*time.Location, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewZoneLookupError(id, nil)
	}

	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, NewZoneLookupError(id, err)
	}

	return loc, nil
}

// Convert projects instant into toZone. The offset is taken from the tz rules in force
// at that instant, so daylight-saving transitions are honoured.
func Convert(instant time.Time, toZone string) (time.Time, error) {
	loc, err := LoadZone(toZone)
	if err != nil {
		return time.Time{}, err
	}

	return instant.In(loc), nil
}

// ConvertBetween reads the wall clock of local as a time in fromZone and returns the same
// instant in toZone. Both zones must resolve.
func ConvertBetween(local time.Time, fromZone, toZone string) (time.Time, error) {
	from, err := LoadZone(fromZone)
	if err != nil {
		return time.Time{}, err
	}

	to, err := LoadZone(toZone)
	if err != nil {
		return time.Time{}, err
	}

	y, mo, d := local.Date()
	h, mi, s := local.Clock()
	instant := time.Date(y, mo, d, h, mi, s, local.Nanosecond(), from)

	return instant.In(to), nil
}

// ConvertAll projects instant into every zone, preserving order.
// A zone that fails to resolve yields a conversion with Err set; the rest are unaffected.
func ConvertAll(instant time.Time, zones []DisplayZone) []ZoneConversion {
	out := make([]ZoneConversion, 0, len(zones))

	for _, z := range zones {
		local, err := Convert(instant, z.ID)
		out = append(out, ZoneConversion{Zone: z, Local: local, Err: err})
	}

	return out
}

// OffsetLabel renders the UTC offset of t, e.g. "UTC", "UTC+7", "UTC-6", "UTC+9:30".
func OffsetLabel(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 {
		return "UTC"
	}

	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}

	hours := offset / 3600
	minutes := (offset % 3600) / 60

	if minutes == 0 {
		return fmt.Sprintf("UTC%s%d", sign, hours)
	}

	return fmt.Sprintf("UTC%s%d:%02d", sign, hours, minutes)
}
