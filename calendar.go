package pit38

import (
	"fmt"
	"time"
)

// Calendar coverage. Holiday tables are generated once for this closed range;
// business-day arithmetic outside of it panics rather than silently assuming
// a holiday-free year.
const (
	calendarFirstYear = 2000
	calendarLastYear  = 2035
)

// Calendar is a named business-day calendar: weekends plus a closed,
// versioned holiday table.
type Calendar struct {
	name     string
	holidays map[Date]string // date -> holiday name
}

// Name returns the calendar's name.
func (c *Calendar) Name() string { return c.name }

// IsHoliday reports whether d is a public holiday on this calendar.
func (c *Calendar) IsHoliday(d Date) (string, bool) {
	name, ok := c.holidays[d]
	return name, ok
}

// IsBusinessDay reports whether d is a business day (not a weekend, not a holiday).
func (c *Calendar) IsBusinessDay(d Date) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.holidays[d]
	return !holiday
}

// AddBusinessDays returns the date n business days after (n>0) or before
// (n<0) the base date on this calendar. n=0 returns the base date unchanged,
// whether or not it is a business day.
func (c *Calendar) AddBusinessDays(d Date, n int) Date {
	if d.Year() < calendarFirstYear || d.Year() > calendarLastYear {
		panic(fmt.Sprintf("date %s outside the %s calendar coverage [%d, %d]", d, c.name, calendarFirstYear, calendarLastYear))
	}
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	for n > 0 {
		d = d.Add(step)
		if c.IsBusinessDay(d) {
			n--
		}
	}
	return d
}

// easterSunday computes the Gregorian Easter Sunday for a year
// (anonymous Gregorian computus).
func easterSunday(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewDate(year, time.Month(month), day)
}

// observed shifts a fixed-date US holiday falling on a weekend to the
// nearest weekday (Saturday -> Friday, Sunday -> Monday).
func observed(d Date) Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.Add(-1)
	case time.Sunday:
		return d.Add(1)
	}
	return d
}

// nthWeekday returns the n-th given weekday of a month (n starting at 1).
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) Date {
	d := NewDate(year, month, 1)
	for d.Weekday() != wd {
		d = d.Add(1)
	}
	return d.Add(7 * (n - 1))
}

// lastWeekday returns the last given weekday of a month.
func lastWeekday(year int, month time.Month, wd time.Weekday) Date {
	d := NewDate(year, month+1, 0) // last day of month
	for d.Weekday() != wd {
		d = d.Add(-1)
	}
	return d
}

// usSettlementCalendar is the calendar on which US equity trades settle:
// the federal holiday set plus Good Friday, which closes the exchanges but
// is not a federal holiday.
var usSettlementCalendar = buildUSSettlement()

// polandCalendar is the Polish business calendar used for rate-lookup dates.
var polandCalendar = buildPoland()

// USSettlement returns the US trade-settlement calendar.
func USSettlement() *Calendar { return usSettlementCalendar }

// Poland returns the Polish business calendar.
func Poland() *Calendar { return polandCalendar }

func buildUSSettlement() *Calendar {
	h := make(map[Date]string)
	add := func(d Date, name string) { h[d] = name }
	for y := calendarFirstYear; y <= calendarLastYear; y++ {
		add(observed(NewDate(y, time.January, 1)), "New Year's Day")
		add(nthWeekday(y, time.January, time.Monday, 3), "Martin Luther King Jr. Day")
		add(nthWeekday(y, time.February, time.Monday, 3), "Washington's Birthday")
		add(easterSunday(y).Add(-2), "Good Friday")
		add(lastWeekday(y, time.May, time.Monday), "Memorial Day")
		if y >= 2021 {
			add(observed(NewDate(y, time.June, 19)), "Juneteenth")
		}
		add(observed(NewDate(y, time.July, 4)), "Independence Day")
		add(nthWeekday(y, time.September, time.Monday, 1), "Labor Day")
		add(nthWeekday(y, time.October, time.Monday, 2), "Columbus Day")
		add(observed(NewDate(y, time.November, 11)), "Veterans Day")
		add(nthWeekday(y, time.November, time.Thursday, 4), "Thanksgiving")
		add(observed(NewDate(y, time.December, 25)), "Christmas Day")
	}
	return &Calendar{name: "us-settlement", holidays: h}
}

func buildPoland() *Calendar {
	h := make(map[Date]string)
	add := func(d Date, name string) { h[d] = name }
	for y := calendarFirstYear; y <= calendarLastYear; y++ {
		easter := easterSunday(y)
		add(NewDate(y, time.January, 1), "Nowy Rok")
		if y >= 2011 {
			add(NewDate(y, time.January, 6), "Trzech Króli")
		}
		add(easter, "Wielkanoc")
		add(easter.Add(1), "Poniedziałek Wielkanocny")
		add(NewDate(y, time.May, 1), "Święto Pracy")
		add(NewDate(y, time.May, 3), "Święto Konstytucji 3 Maja")
		add(easter.Add(49), "Zielone Świątki")
		add(easter.Add(60), "Boże Ciało")
		add(NewDate(y, time.August, 15), "Wniebowzięcie NMP")
		add(NewDate(y, time.November, 1), "Wszystkich Świętych")
		add(NewDate(y, time.November, 11), "Święto Niepodległości")
		if y >= 2025 {
			add(NewDate(y, time.December, 24), "Wigilia")
		}
		add(NewDate(y, time.December, 25), "Boże Narodzenie")
		add(NewDate(y, time.December, 26), "Drugi Dzień Świąt")
	}
	return &Calendar{name: "poland", holidays: h}
}
