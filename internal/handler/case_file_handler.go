package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/service/casefile"
)

type CaseFileHandler struct {
	caseFileService casefile.Service
}

func NewCaseFileHandler(caseFileService casefile.Service) *CaseFileHandler {
	return &CaseFileHandler{caseFileService: caseFileService}
}

func (h *CaseFileHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateCaseFileInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	cf, err := h.caseFileService.Create(c.UserContext(), middleware.GetActor(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(cf)
}

func (h *CaseFileHandler) List(c *fiber.Ctx) error {
	filter := domain.CaseFileFilter{
		Search: c.Query("search"),
	}
	if status := domain.CaseFileStatus(c.Query("status")); status != "" {
		if !status.IsValid() {
			return middleware.BadRequest("Invalid status")
		}
		filter.Status = &status
	}
	if dept := c.Query("department_id"); dept != "" {
		id, err := uuid.Parse(dept)
		if err != nil {
			return middleware.BadRequest("Invalid department_id")
		}
		filter.DepartmentID = &id
	}

	result, err := h.caseFileService.List(c.UserContext(), middleware.GetActor(c), filter, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *CaseFileHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	cf, err := h.caseFileService.GetByID(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.JSON(cf)
}

func (h *CaseFileHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateCaseFileInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	cf, err := h.caseFileService.Update(c.UserContext(), middleware.GetActor(c), id, input)
	if err != nil {
		return err
	}

	return c.JSON(cf)
}

func (h *CaseFileHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.caseFileService.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CaseFileHandler) Submit(c *fiber.Ctx) error {
	return h.transition(c, h.caseFileService.Submit)
}

func (h *CaseFileHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.caseFileService.Approve)
}

func (h *CaseFileHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, withRequiredComments(h.caseFileService.Reject))
}

func (h *CaseFileHandler) Return(c *fiber.Ctx) error {
	return h.transition(c, withRequiredComments(h.caseFileService.Return))
}

type caseFileAction func(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.CaseFile, error)

func (h *CaseFileHandler) transition(c *fiber.Ctx, action caseFileAction) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := parseComments(c)
	if err != nil {
		return err
	}

	cf, err := action(c.UserContext(), middleware.GetActor(c), id, comments)
	if err != nil {
		return err
	}

	return c.JSON(cf)
}

func (h *CaseFileHandler) History(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	history, err := h.caseFileService.History(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.JSON(history)
}

func (h *CaseFileHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.caseFileService.Statistics(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

func (h *CaseFileHandler) UploadDocument(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	upload, file, err := openUpload(c, "file")
	if err != nil {
		return err
	}
	if upload == nil {
		return middleware.BadRequest("File is required")
	}
	defer file.Close()

	doc, err := h.caseFileService.AddDocument(c.UserContext(), middleware.GetActor(c), id, *upload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *CaseFileHandler) ListDocuments(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	docs, err := h.caseFileService.ListDocuments(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.JSON(docs)
}

func (h *CaseFileHandler) DeleteDocument(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	documentID, err := parseIDParam(c, "documentId")
	if err != nil {
		return err
	}

	if err := h.caseFileService.RemoveDocument(c.UserContext(), middleware.GetActor(c), id, documentID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
