package fleet

import (
	"errors"
	"fmt"
	"strings"

	"fleetline/internal/domain"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validateShip(s domain.Ship) error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("ship name is required")
	}
	if !s.Status.Valid() {
		return invalid("ship status %q", s.Status)
	}
	if s.IMO != "" && !isIMO(s.IMO) {
		return invalid("imo %q must be 7 digits", s.IMO)
	}
	if s.YearBuilt < 0 {
		return invalid("year built must not be negative")
	}
	if s.Length < 0 {
		return invalid("length must not be negative")
	}
	return nil
}

func isIMO(s string) bool {
	if len(s) != 7 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateComponent(c domain.Component) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("component name is required")
	}
	if !c.Status.Valid() {
		return invalid("component status %q", c.Status)
	}
	for _, d := range []struct{ field, value string }{
		{"installDate", c.InstallDate},
		{"lastMaintenanceDate", c.LastMaintenanceDate},
		{"nextMaintenanceDate", c.NextMaintenanceDate},
	} {
		if err := checkDate(d.field, d.value); err != nil {
			return err
		}
	}
	return nil
}

func validateJob(j domain.Job) error {
	if strings.TrimSpace(j.Title) == "" {
		return invalid("job title is required")
	}
	if !j.Type.Valid() {
		return invalid("job type %q", j.Type)
	}
	if !j.Priority.Valid() {
		return invalid("job priority %q", j.Priority)
	}
	if !j.Status.Valid() {
		return invalid("job status %q", j.Status)
	}
	if j.EstimatedHours < 0 {
		return invalid("estimated hours must not be negative")
	}
	if err := checkDate("scheduledDate", j.ScheduledDate); err != nil {
		return err
	}
	if j.CompletedDate != nil {
		return checkDate("completedDate", *j.CompletedDate)
	}
	return nil
}

func validateDraft(d domain.NotificationDraft) error {
	if !d.Type.Valid() {
		return invalid("notification type %q", d.Type)
	}
	if strings.TrimSpace(d.Title) == "" {
		return invalid("notification title is required")
	}
	return nil
}

// checkDate accepts an empty value.
func checkDate(field, v string) error {
	if v == "" {
		return nil
	}
	if _, err := domain.ParseDate(v); err != nil {
		return invalid("%s %q is not a date", field, v)
	}
	return nil
}
