package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/service/news"
)

// PublicHandler serves published news without authentication.
type PublicHandler struct {
	newsService news.Service
}

func NewPublicHandler(newsService news.Service) *PublicHandler {
	return &PublicHandler{newsService: newsService}
}

func (h *PublicHandler) ListNews(c *fiber.Ctx) error {
	filter := domain.NewsFilter{
		Search: c.Query("search"),
	}
	if t := domain.NewsType(c.Query("type")); t != "" {
		if !t.IsValid() {
			return middleware.BadRequest("Invalid type")
		}
		filter.Type = &t
	}

	result, err := h.newsService.ListPublished(c.UserContext(), filter, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *PublicHandler) GetNews(c *fiber.Ctx) error {
	n, err := h.newsService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}

	return c.JSON(n)
}
