package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) GetRecentActivities(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	logs, err := h.auditService.GetRecentActivities(c.UserContext(), limit)
	if err != nil {
		return err
	}

	return c.JSON(logs)
}

func (h *AuditHandler) ListForEntity(c *fiber.Ctx) error {
	entityType := domain.EntityType(c.Params("entityType"))
	switch entityType {
	case domain.EntityCaseFile, domain.EntityNews, domain.EntityDocument, domain.EntityUser:
	default:
		return middleware.BadRequest("Invalid entity type")
	}

	entityID, err := parseIDParam(c, "entityId")
	if err != nil {
		return err
	}

	result, err := h.auditService.ListForEntity(c.UserContext(), entityType, entityID, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}
