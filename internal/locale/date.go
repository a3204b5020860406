package locale

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const canonicalLayout = "2006-01-02"

// SentinelDate is substituted for dates that cannot be parsed.
const SentinelDate = "1900-01-01"

// maxSerial is the spreadsheet serial of 9999-12-31.
const maxSerial = 2958465

var (
	dayFirstRe  = regexp.MustCompile(`^(\d{1,2})[./-]+(\d{1,2})[./-]+(\d{4}|\d{2})$`)
	canonicalRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	serialRe    = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// ParseDate converts a raw cell value into a canonical YYYY-MM-DD date.
//
// Accepted shapes:
//   - spreadsheet serial numbers (numeric cells or purely numeric text);
//     the fractional time of day is ignored
//   - day-first text D.M.Y, D-M-Y or D/M/Y with 1-2 digit day and month and a
//     2 or 4 digit year; 2 digit years are taken as 20xx
//   - text already in canonical form
//
// The boolean is false for anything else, including impossible calendar dates.
func ParseDate(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return v.Format(canonicalLayout), true
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case string:
		return parseDateText(v)
	}
	return "", false
}

// ParseDateOr is ParseDate with a fallback for unparseable input.
func ParseDateOr(raw any, fallback string) string {
	if d, ok := ParseDate(raw); ok {
		return d
	}
	return fallback
}

func parseDateText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if m := dayFirstRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		return calendarDate(year, month, day)
	}
	if m := canonicalRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return calendarDate(year, month, day)
	}
	if serialRe.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", false
		}
		return fromSerial(f)
	}
	return "", false
}

func fromSerial(serial float64) (string, bool) {
	if math.IsNaN(serial) || serial < 1 || serial > maxSerial {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(math.Floor(serial), false)
	if err != nil {
		return "", false
	}
	return t.Format(canonicalLayout), true
}

// calendarDate rejects dates that time.Date would silently normalise (31.2.2026).
func calendarDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format(canonicalLayout), true
}
