package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Legacy rows store next_payment_date either as ISO (2006-01-02) or as the
// Spanish long form the admin UI used to write ("05 de marzo de 2025").
// Normalization is total: anything unrecognized falls back to the current
// date so the deadline check always has something to compare against.

const isoDate = "2006-01-02"

var (
	isoPattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	spanishPattern = regexp.MustCompile(`(\d{1,2}) de ([a-z]+),?(?: de)? (\d{4})`)
)

var monthNumbers = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var monthNames = map[time.Month]string{
	time.January:   "enero",
	time.February:  "febrero",
	time.March:     "marzo",
	time.April:     "abril",
	time.May:       "mayo",
	time.June:      "junio",
	time.July:      "julio",
	time.August:    "agosto",
	time.September: "septiembre",
	time.October:   "octubre",
	time.November:  "noviembre",
	time.December:  "diciembre",
}

// NormalizeDueDate maps a stored due-date string to ISO form. ISO input is
// returned as-is; the Spanish long form is parsed through the month table;
// anything else normalizes to now's date. Never fails.
func NormalizeDueDate(raw string, now time.Time) string {
	if isoPattern.MatchString(raw) {
		return raw
	}
	if m := spanishPattern.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		if month, ok := monthNumbers[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		}
	}
	return now.Format(isoDate)
}

// Deadline is the cutoff instant for an ISO due date: 23:59:59 local time on
// that day. A stored status stays "pending" up to and including this instant.
func Deadline(iso string, now time.Time) time.Time {
	day, err := time.ParseInLocation(isoDate, iso, time.Local)
	if err != nil {
		day, _ = time.ParseInLocation(isoDate, now.Format(isoDate), time.Local)
	}
	return day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

// NextDueDate returns the ISO date exactly one calendar month after the given
// ISO date. Day-of-month overflow rolls forward the way time.AddDate does
// (Jan 31 becomes Mar 2 or 3), matching how legacy data was produced.
func NextDueDate(iso string) string {
	day, err := time.ParseInLocation(isoDate, iso, time.Local)
	if err != nil {
		return iso
	}
	return day.AddDate(0, 1, 0).Format(isoDate)
}

// FormatSpanish renders an ISO date in the es-MX long form used for stored
// next-payment dates, e.g. "15 de febrero de 2025".
func FormatSpanish(iso string) string {
	day, err := time.ParseInLocation(isoDate, iso, time.Local)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%02d de %s de %d", day.Day(), monthNames[day.Month()], day.Year())
}
