package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"volunteerhub/internal/model"
)

const icsProductID = "-//VolunteerHub//EN"

var icsTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// WriteEventICS renders a single-event iCalendar file. Events with parseable
// start/end times become timed entries; otherwise the event date is emitted
// as an all-day entry.
func WriteEventICS(w io.Writer, event model.Event) {
	fmt.Fprint(w, "BEGIN:VCALENDAR\r\n")
	fmt.Fprint(w, "VERSION:2.0\r\n")
	fmt.Fprintf(w, "PRODID:%s\r\n", icsProductID)
	fmt.Fprint(w, "CALSCALE:GREGORIAN\r\n")

	fmt.Fprint(w, "BEGIN:VEVENT\r\n")
	fmt.Fprintf(w, "UID:event-%s@volunteerhub\r\n", event.ID)
	fmt.Fprintf(w, "DTSTAMP:%s\r\n", time.Now().UTC().Format("20060102T150405Z"))

	start, startOK := parseICSTime(event.StartAt)
	end, endOK := parseICSTime(event.EndAt)

	switch {
	case startOK && endOK:
		fmt.Fprintf(w, "DTSTART:%s\r\n", start.Format("20060102T150405"))
		fmt.Fprintf(w, "DTEND:%s\r\n", end.Format("20060102T150405"))
	case startOK:
		fmt.Fprintf(w, "DTSTART:%s\r\n", start.Format("20060102T150405"))
	default:
		if date, ok := parseICSTime(event.EventDate); ok {
			fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\r\n", date.Format("20060102"))
			fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\r\n", date.AddDate(0, 0, 1).Format("20060102"))
		}
	}

	fmt.Fprintf(w, "SUMMARY:%s\r\n", escapeICS(event.Title))
	if event.Description != "" {
		fmt.Fprintf(w, "DESCRIPTION:%s\r\n", escapeICS(event.Description))
	}
	fmt.Fprintf(w, "LOCATION:%s\r\n", escapeICS(event.Location))
	fmt.Fprint(w, "END:VEVENT\r\n")

	fmt.Fprint(w, "END:VCALENDAR\r\n")
}

func parseICSTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range icsTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// escapeICS escapes the characters RFC 5545 reserves in text values.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
