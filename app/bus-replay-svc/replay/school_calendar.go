package replay

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

//schoolServiceCalendar flags days when no bus service is expected, so an empty
//journey on those days renders as an expected idle state.
//TODO:: holiday set should come from school district configuration.
type schoolServiceCalendar struct {
	calendar *cal.BusinessCalendar
}

//makeSchoolServiceCalendar builds a schoolServiceCalendar observing weekends
//and the major US school holidays
func makeSchoolServiceCalendar() *schoolServiceCalendar {
	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
		us.Juneteenth,
	)
	return &schoolServiceCalendar{calendar: calendar}
}

//isServiceDay returns true when buses are expected to run on at
func (c *schoolServiceCalendar) isServiceDay(at time.Time) bool {
	return c.calendar.IsWorkday(at)
}
