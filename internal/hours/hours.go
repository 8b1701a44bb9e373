// Package hours parses the many spreadsheet shapes opening hours arrive
// in and evaluates them against a wall-clock moment. The evaluation is
// tri-state: a record with no hours data is "unknown", which callers must
// not conflate with "closed".
package hours

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusOpen
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// rangeRe accepts "9:00-17:00", "09:00 - 17:00", "9am-5pm", "9-17" and the
// en-dash variants of all of those.
var rangeRe = regexp.MustCompile(`(?i)(\d{1,2}):?(\d{2})?\s*(am|pm)?\s*[-–]\s*(\d{1,2}):?(\d{2})?\s*(am|pm)?`)

// dayLineRe matches one "<day> <time>-<time>" clause inside a free-text
// hours blob, with either full or 3-letter day names.
var dayLineRe = regexp.MustCompile(`(?i)(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun)[\s:]*([0-9:]+\s*-\s*[0-9:]+)`)

// ParseRange parses a single time range into a 24-hour open/close pair.
func ParseRange(s string) (domain.DayHours, bool) {
	m := rangeRe.FindStringSubmatch(s)
	if m == nil {
		return domain.DayHours{}, false
	}

	openH, _ := strconv.Atoi(m[1])
	closeH, _ := strconv.Atoi(m[4])
	openMin := m[2]
	if openMin == "" {
		openMin = "00"
	}
	closeMin := m[5]
	if closeMin == "" {
		closeMin = "00"
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if openH < 12 {
			openH += 12
		}
	case "am":
		if openH == 12 {
			openH = 0
		}
	}
	switch strings.ToLower(m[6]) {
	case "pm":
		if closeH < 12 {
			closeH += 12
		}
	case "am":
		if closeH == 12 {
			closeH = 0
		}
	}

	return domain.DayHours{
		Open:  pad2(openH) + ":" + openMin,
		Close: pad2(closeH) + ":" + closeMin,
	}, true
}

// ParseText scans an unstructured hours blob such as
// "Mon: 9:00-17:00, Tue: 9:00-17:00" for per-day clauses. Lines split on
// comma, semicolon, or newline; 3-letter day abbreviations expand to full
// names. Unrecognized lines are skipped.
func ParseText(s string) domain.OpeningHours {
	out := domain.OpeningHours{}
	for _, line := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	}) {
		m := dayLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		dh, ok := ParseRange(m[2])
		if !ok {
			continue
		}
		out[expandDay(strings.ToLower(m[1]))] = dh
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseJSON accepts an hours object keyed by weekday, where each value is
// either an {open, close} pair or a single range string. Keys are
// case-insensitive; unknown days and unparseable values are dropped. The
// loose JSON shape never leaks past this function.
func ParseJSON(raw string) domain.OpeningHours {
	var loose map[string]any
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil
	}
	out := domain.OpeningHours{}
	for k, v := range loose {
		day := expandDay(strings.ToLower(strings.TrimSpace(k)))
		if !isWeekday(day) {
			continue
		}
		switch val := v.(type) {
		case string:
			if dh, ok := ParseRange(val); ok {
				out[day] = dh
			}
		case map[string]any:
			open, _ := val["open"].(string)
			closes, _ := val["close"].(string)
			if open != "" && closes != "" {
				out[day] = domain.DayHours{Open: open, Close: closes}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// StatusAt evaluates the hours against a moment. nil hours -> unknown; a
// day without an entry (or with an incomplete pair) -> closed. A close
// time earlier than the open time spans midnight, so the open window is
// [open, 24:00) plus [00:00, close].
func StatusAt(h domain.OpeningHours, at time.Time) Status {
	if len(h) == 0 {
		return StatusUnknown
	}

	day := strings.ToLower(at.Weekday().String())
	dh, ok := h[day]
	if !ok || dh.Open == "" || dh.Close == "" {
		return StatusClosed
	}

	open, ok1 := clockValue(dh.Open)
	closes, ok2 := clockValue(dh.Close)
	if !ok1 || !ok2 {
		return StatusClosed
	}

	now := at.Hour()*100 + at.Minute()
	if closes < open {
		if now >= open || now <= closes {
			return StatusOpen
		}
		return StatusClosed
	}
	if now >= open && now <= closes {
		return StatusOpen
	}
	return StatusClosed
}

// clockValue converts "HH:MM" to an integer HHMM for comparison.
func clockValue(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return h*100 + m, true
}

func expandDay(d string) string {
	if len(d) != 3 {
		return d
	}
	for _, full := range weekdays {
		if strings.HasPrefix(full, d) {
			return full
		}
	}
	return d
}

func isWeekday(d string) bool {
	for _, full := range weekdays {
		if d == full {
			return true
		}
	}
	return false
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
