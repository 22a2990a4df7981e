package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"volunteerhub/internal/model"
)

// utf8BOM makes Excel open the file as UTF-8; Arabic names garble without it.
const utf8BOM = "\uFEFF"

// WriteRegistrationsCSV renders the full registration ledger, one row per
// registration regardless of workflow state.
func WriteRegistrationsCSV(w io.Writer, records []model.RegistrationRecord) error {
	writer := csv.NewWriter(w)

	header := []string{"Volunteer", "Email", "Event", "Event Date", "Status", "Hours", "Registered At"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.VolunteerName,
			record.VolunteerEmail,
			record.EventTitle,
			record.EventDate,
			string(record.Status),
			fmt.Sprintf("%.2f", record.Hours),
			record.RegisteredAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteApprovedHoursCSV renders only approved submissions, newest approval
// first, prefixed with a UTF-8 BOM.
func WriteApprovedHoursCSV(w io.Writer, records []model.RegistrationRecord) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write bom: %w", err)
	}

	writer := csv.NewWriter(w)

	header := []string{
		"Volunteer", "Email", "Event", "Start", "End",
		"Self Hours", "Extra Hours", "Extra Description",
		"Approved Hours", "Approved At",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.VolunteerName,
			record.VolunteerEmail,
			record.EventTitle,
			record.EventStart,
			record.EventEnd,
			formatOptionalHours(record.SelfHours),
			formatOptionalHours(record.ExtraHours),
			stringOrEmpty(record.ExtraDesc),
			formatOptionalHours(record.ApprovedHours),
			formatOptionalTime(record.ApprovedAt),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatOptionalHours(hours *float64) string {
	if hours == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *hours)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
