package handler

import (
	"mime"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"docintake/internal/model"
	"docintake/internal/registry"
	"docintake/internal/service"
)

// UploadDocument submits an identity document (multipart/form-data, fields
// file and document_type).
//
// @Summary Upload identity document
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param id path string true "candidate id"
// @Param document_type formData string true "pan_card, aadhaar_card or other"
// @Param file formData file true "image or PDF"
// @Success 201 {object} service.DocumentOutcome
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /candidates/{id}/documents [post]
func UploadDocument(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok, err := readUpload(c)
		if !ok {
			return err
		}
		out, err := svc.UploadDocument(c.UserContext(), model.ID(c.Params("id")), c.FormValue("document_type"), u)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListDocuments returns a candidate's registry, most recent last.
//
// @Summary List candidate documents
// @Tags documents
// @Produce json
// @Param id path string true "candidate id"
// @Success 200 {array} registry.View
// @Router /candidates/{id}/documents [get]
func ListDocuments(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		views, err := svc.ListDocuments(c.UserContext(), model.ID(c.Params("id")))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(views)
	}
}

// DeleteDocument removes a document from the local registry. The operator
// confirms with confirm=true; nothing is sent to the backend.
//
// @Summary Remove document locally
// @Tags documents
// @Param id path string true "candidate id"
// @Param docId path string true "document id"
// @Param confirm query bool true "operator confirmation"
// @Success 204
// @Failure 404 {object} errorPayload
// @Failure 412 {object} errorPayload
// @Router /candidates/{id}/documents/{docId} [delete]
func DeleteDocument(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var confirm registry.Confirmer
		if c.QueryBool("confirm", false) {
			confirm = registry.Confirmed
		}
		err := svc.RemoveDocument(c.UserContext(), model.ID(c.Params("id")), model.ID(c.Params("docId")), confirm)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument returns a presigned URL for the archived original, or
// streams it when inline=true.
//
// @Summary Download archived original
// @Tags documents
// @Produce json
// @Param id path string true "candidate id"
// @Param docId path string true "document id"
// @Param inline query bool false "stream the file instead of returning a URL"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /candidates/{id}/documents/{docId}/download [get]
func DownloadDocument(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid, did := model.ID(c.Params("id")), model.ID(c.Params("docId"))

		if !c.QueryBool("inline", false) {
			u, err := svc.DownloadURL(c.UserContext(), cid, did)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.JSON(fiber.Map{"url": u})
		}

		rc, info, err := svc.OpenDocument(c.UserContext(), cid, did)
		if err != nil {
			return writeServiceError(c, err)
		}

		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		if name := info.Metadata["original-name"]; name != "" {
			c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": name}))
		}
		// fasthttp closes rc once the body is written.
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.SendStream(rc, size)
	}
}

// GetSession reports the active or most recent session of an upload slot.
//
// @Summary Upload session state
// @Tags sessions
// @Produce json
// @Param slot path string true "resume or document:<candidate>:<type>"
// @Success 200 {object} session.Snapshot
// @Failure 404 {object} errorPayload
// @Router /sessions/{slot} [get]
func GetSession(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slot, err := url.PathUnescape(c.Params("slot"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SLOT", "invalid slot")
		}
		snap, ok := svc.Session(slot)
		if !ok {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no session for slot")
		}
		return c.JSON(snap)
	}
}
