package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// TimestampResult holds the parsed timestamp and any error.
type TimestampResult struct {
	Time  time.Time
	Error error
}

// periodRegex matches period expressions like "this week", "last month".
var periodRegex = regexp.MustCompile(`(?i)^(this|current|last|previous)\s+(hour|day|week|month|quarter|year)$`)

// absoluteLayouts are tried before natural language parsing.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp expression relative to now. It accepts
// RFC 3339 and ISO dates, period expressions such as "this week", and
// natural language such as "2 hours ago".
func ParseTimestamp(input string, now time.Time) TimestampResult {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "now") {
		return TimestampResult{Time: now}
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return TimestampResult{Time: t}
		}
	}

	if match := periodRegex.FindStringSubmatch(input); match != nil {
		return TimestampResult{Time: periodStart(match[1], match[2], now)}
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return TimestampResult{Error: NewTimestampError(input)}
	}
	return TimestampResult{Time: result.Time}
}

// periodStart returns the start of the period named by modifier and period.
func periodStart(modifier, period string, now time.Time) time.Time {
	previous := strings.EqualFold(modifier, "last") || strings.EqualFold(modifier, "previous")
	loc := now.Location()

	var t time.Time
	switch strings.ToLower(period) {
	case "hour":
		t = time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, loc)
		if previous {
			t = t.Add(-time.Hour)
		}
	case "day":
		t = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(0, 0, -1)
		}
	case "week":
		// Weeks start on Monday
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		t = time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(0, 0, -7)
		}
	case "month":
		t = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(0, -1, 0)
		}
	case "quarter":
		quarter := (int(now.Month()) - 1) / 3
		t = time.Date(now.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(0, -3, 0)
		}
	case "year":
		t = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		if previous {
			t = t.AddDate(-1, 0, 0)
		}
	default:
		t = now
	}
	return t
}

// TimeRange is a span of time. End is exclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// PeriodRange returns the range covered by a named period such as
// "today", "yesterday", "this week", or "last month". ok is false when
// period is not a period name.
func PeriodRange(period string, now time.Time) (TimeRange, bool) {
	period = strings.ToLower(strings.TrimSpace(period))
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case "today":
		return TimeRange{Start: today, End: today.AddDate(0, 0, 1)}, true
	case "yesterday":
		return TimeRange{Start: today.AddDate(0, 0, -1), End: today}, true
	}

	match := periodRegex.FindStringSubmatch(period)
	if match == nil {
		return TimeRange{}, false
	}
	start := periodStart(match[1], match[2], now)

	var end time.Time
	switch match[2] {
	case "hour":
		end = start.Add(time.Hour)
	case "day":
		end = start.AddDate(0, 0, 1)
	case "week":
		end = start.AddDate(0, 0, 7)
	case "month":
		end = start.AddDate(0, 1, 0)
	case "quarter":
		end = start.AddDate(0, 3, 0)
	case "year":
		end = start.AddDate(1, 0, 0)
	}
	return TimeRange{Start: start, End: end}, true
}

// ParseWindow parses the --since and --until bounds of a time window.
// Either may be empty. A period name as since selects the start of the
// period; as until it selects the last instant of the period, so both
// bounds stay inclusive.
func ParseWindow(since, until string, now time.Time) (from, to time.Time, err error) {
	if strings.TrimSpace(since) != "" {
		if r, ok := PeriodRange(since, now); ok {
			from = r.Start
		} else {
			res := ParseTimestamp(since, now)
			if res.Error != nil {
				return time.Time{}, time.Time{}, withField(res.Error, "since")
			}
			from = res.Time
		}
	}

	if strings.TrimSpace(until) != "" {
		if r, ok := PeriodRange(until, now); ok {
			to = r.End.Add(-time.Nanosecond)
		} else {
			res := ParseTimestamp(until, now)
			if res.Error != nil {
				return time.Time{}, time.Time{}, withField(res.Error, "until")
			}
			to = res.Time
		}
	}

	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, &TimeParseError{
			Input:      until,
			Field:      "until",
			Message:    "ends before --since",
			Suggestion: "Pick an --until that is later than --since.",
		}
	}
	return from, to, nil
}

func withField(err error, field string) error {
	if tpe, ok := err.(*TimeParseError); ok {
		tpe.Field = field
		return tpe
	}
	return err
}
