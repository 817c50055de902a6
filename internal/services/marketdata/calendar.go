package marketdata

import (
	"time"

	"github.com/folioworks/folio/internal/interfaces"
)

// kolkataLocation is the Asia/Kolkata timezone (IST, UTC+5:30, no DST).
var kolkataLocation = mustLoadLocation("Asia/Kolkata")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Fallback to a fixed IST zone if tzdata is unavailable (e.g., minimal container)
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// NSECalendar implements ExchangeCalendar for NSE equity and derivatives
// trading hours: 09:15–15:30 IST, Monday–Friday. Exchange holidays are not
// modelled; a holiday behaves like a very quiet trading day.
type NSECalendar struct{}

// NewNSECalendar returns the default exchange calendar.
func NewNSECalendar() *NSECalendar {
	return &NSECalendar{}
}

// IsOpenAt reports whether the given time falls within NSE trading hours.
func (c *NSECalendar) IsOpenAt(t time.Time) bool {
	ist := t.In(kolkataLocation)
	weekday := ist.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}
	hour, min, _ := ist.Clock()
	minuteOfDay := hour*60 + min
	// 09:15 = 555, 15:30 = 930
	return minuteOfDay >= 555 && minuteOfDay <= 930
}

// Ensure NSECalendar implements ExchangeCalendar
var _ interfaces.ExchangeCalendar = (*NSECalendar)(nil)
