package handler

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docintake/internal/model"
	"docintake/internal/service"
)

// CandidateList is one page of candidates.
type CandidateList struct {
	Items  []model.Candidate `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// ListCandidates returns candidates in backend order. A backend failure is
// an empty list, not an error.
//
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Param limit query int false "page size" default(50)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} CandidateList
// @Failure 400 {object} errorPayload
// @Router /candidates [get]
func ListCandidates(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil || limit < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil || offset < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		all := svc.ListCandidates(c.UserContext())
		page := []model.Candidate{}
		if offset < len(all) {
			end := len(all)
			if limit > 0 {
				end = min(offset+limit, len(all))
			}
			page = all[offset:end]
		}
		return c.JSON(CandidateList{Items: page, Total: len(all), Limit: limit, Offset: offset})
	}
}

// GetCandidate re-fetches a candidate and returns its display model and
// reconciled documents.
//
// @Summary Candidate detail
// @Tags candidates
// @Produce json
// @Param id path string true "candidate id"
// @Success 200 {object} service.CandidateView
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /candidates/{id} [get]
func GetCandidate(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.CandidateView(c.UserContext(), model.ID(c.Params("id")))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// UploadResume submits a resume (multipart/form-data, field name: file).
//
// @Summary Upload resume
// @Tags candidates
// @Accept mpfd
// @Produce json
// @Param file formData file true "PDF or Word resume"
// @Success 201 {object} service.ResumeOutcome
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /candidates/resume [post]
func UploadResume(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok, err := readUpload(c)
		if !ok {
			return err
		}
		out, err := svc.UploadResume(c.UserContext(), u)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// RequestDocuments asks the backend to email the candidate for documents.
//
// @Summary Request identity documents
// @Tags candidates
// @Produce json
// @Param id path string true "candidate id"
// @Success 200 {object} gateway.DocumentRequestResult
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /candidates/{id}/request-documents [post]
func RequestDocuments(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.RequestDocuments(c.UserContext(), model.ID(c.Params("id")))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// readUpload reads the "file" form field. When ok is false the error
// response has been written and err is its result.
func readUpload(c *fiber.Ctx) (u service.Upload, ok bool, err error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return u, false, writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	}

	content, err := readFormFile(fh)
	if err != nil {
		return u, false, writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}

	return service.Upload{
		FileName:  fh.Filename,
		MediaType: fh.Header.Get(fiber.HeaderContentType),
		Content:   content,
	}, true, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
