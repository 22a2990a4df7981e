package web

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"volunteerhub/internal/export"
	"volunteerhub/internal/middleware"
	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/storage"
)

// ExportRegistrationsCSV downloads the full ledger, one row per registration.
func (h *Handler) ExportRegistrationsCSV(c *fiber.Ctx) error {
	records, err := h.repo.AllRegistrationRecords(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to load registration records", "error", err)
		return h.flashRedirect(c, "server_error", "/admin")
	}

	var buf bytes.Buffer
	if err := export.WriteRegistrationsCSV(&buf, records); err != nil {
		h.logger.Error("Failed to render csv export", "error", err)
		return h.flashRedirect(c, "server_error", "/admin")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=registrations_export.csv`)
	return c.Send(buf.Bytes())
}

// ExportApprovedHoursCSV downloads approved submissions only, BOM-prefixed
// so spreadsheet tools pick up the encoding.
func (h *Handler) ExportApprovedHoursCSV(c *fiber.Ctx) error {
	records, err := h.repo.ApprovedRegistrationRecords(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to load approved records", "error", err)
		return h.flashRedirect(c, "server_error", "/admin")
	}

	var buf bytes.Buffer
	if err := export.WriteApprovedHoursCSV(&buf, records); err != nil {
		h.logger.Error("Failed to render hours export", "error", err)
		return h.flashRedirect(c, "server_error", "/admin")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=hours.csv`)
	return c.Send(buf.Bytes())
}

// EventICS downloads a calendar entry for one event.
func (h *Handler) EventICS(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.flashRedirect(c, "event_not_found", "/events")
	}

	event, err := h.events.Get(c.UserContext(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return h.flashRedirect(c, "event_not_found", "/events")
		}
		h.logger.Error("Failed to load event", "error", err, "event_id", eventID)
		return h.flashRedirect(c, "server_error", "/events")
	}

	var buf bytes.Buffer
	export.WriteEventICS(&buf, event)

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=event_%s.ics`, eventID))
	return c.Send(buf.Bytes())
}

// CertificatePDF downloads the appreciation certificate for a registration.
// Volunteers can only fetch their own; admins can fetch any. Rendered
// certificates are archived in storage and served from there on repeat
// requests.
func (h *Handler) CertificatePDF(c *fiber.Ctx) error {
	raw := strings.TrimSuffix(c.Params("id"), ".pdf")
	regID, err := uuid.Parse(raw)
	if err != nil {
		return h.flashRedirect(c, "not_found", "/dashboard")
	}

	record, err := h.repo.GetRegistrationRecord(c.UserContext(), regID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return h.flashRedirect(c, "not_found", "/dashboard")
		}
		h.logger.Error("Failed to load registration record", "error", err, "registration_id", regID)
		return h.flashRedirect(c, "server_error", "/dashboard")
	}

	if middleware.Role(c) != model.RoleAdmin && record.UserID != middleware.UserID(c) {
		return h.flashRedirect(c, "not_allowed", "/dashboard")
	}

	content, err := h.certificateBytes(c, record)
	if err != nil {
		h.logger.Error("Failed to render certificate", "error", err, "registration_id", regID)
		return h.flashRedirect(c, "server_error", "/dashboard")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=certificate_%s.pdf`, regID))
	return c.Send(content)
}

func (h *Handler) certificateBytes(c *fiber.Ctx, record model.RegistrationRecord) ([]byte, error) {
	ctx := c.UserContext()
	key := storage.CertificateKey(record.ID)

	if exists, err := h.certificates.Exists(ctx, key); err == nil && exists {
		reader, err := h.certificates.Retrieve(ctx, key)
		if err == nil {
			defer reader.Close()
			var buf bytes.Buffer
			if _, err := buf.ReadFrom(reader); err == nil {
				return buf.Bytes(), nil
			}
		}
		h.logger.Warn("Failed to read archived certificate, re-rendering", "key", key)
	}

	var buf bytes.Buffer
	if err := export.WriteCertificatePDF(&buf, record); err != nil {
		return nil, err
	}

	if _, err := h.certificates.Store(ctx, record.ID, bytes.NewReader(buf.Bytes())); err != nil {
		h.logger.Warn("Failed to archive certificate", "error", err, "key", key)
	}
	return buf.Bytes(), nil
}
