package handler

import (
	"context"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/service/news"
)

type NewsHandler struct {
	newsService news.Service
}

func NewNewsHandler(newsService news.Service) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

func (h *NewsHandler) Create(c *fiber.Ctx) error {
	return h.create(c, h.newsService.Create)
}

func (h *NewsHandler) CourtSubmission(c *fiber.Ctx) error {
	return h.create(c, h.newsService.CourtSubmission)
}

type createNewsFunc func(ctx context.Context, actor domain.Actor, input domain.CreateNewsInput, image *domain.FileUpload) (*domain.News, error)

func (h *NewsHandler) create(c *fiber.Ctx, create createNewsFunc) error {
	var input domain.CreateNewsInput
	var image *domain.FileUpload

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return middleware.BadRequest("Invalid multipart form")
		}
		input.Title = formValue(form, "title")
		input.Content = formValue(form, "content")
		input.Type = domain.NewsType(formValue(form, "type"))
		if v, ok := formField(form, "subtitle"); ok {
			input.Subtitle = &v
		}

		upload, file, err := openUpload(c, "image")
		if err != nil {
			return err
		}
		if file != nil {
			defer file.Close()
		}
		image = upload
	} else if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	n, err := create(c.UserContext(), middleware.GetActor(c), input, image)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(n)
}

func (h *NewsHandler) List(c *fiber.Ctx) error {
	filter := domain.NewsFilter{
		Search: c.Query("search"),
	}
	if t := domain.NewsType(c.Query("type")); t != "" {
		if !t.IsValid() {
			return middleware.BadRequest("Invalid type")
		}
		filter.Type = &t
	}
	if status := domain.NewsStatus(c.Query("status")); status != "" {
		if !status.IsValid() {
			return middleware.BadRequest("Invalid status")
		}
		filter.Status = &status
	}
	if author := c.Query("author_id"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			return middleware.BadRequest("Invalid author_id")
		}
		filter.AuthorID = &id
	}

	result, err := h.newsService.List(c.UserContext(), middleware.GetActor(c), filter, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *NewsHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	n, err := h.newsService.GetByID(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.JSON(n)
}

func (h *NewsHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateNewsInput
	var image *domain.FileUpload

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return middleware.BadRequest("Invalid multipart form")
		}
		if v, ok := formField(form, "title"); ok {
			input.Title = &v
		}
		if v, ok := formField(form, "subtitle"); ok {
			input.Subtitle = &v
		}
		if v, ok := formField(form, "content"); ok {
			input.Content = &v
		}
		if v, ok := formField(form, "type"); ok {
			t := domain.NewsType(v)
			input.Type = &t
		}
		if v, ok := formField(form, "remove_image"); ok {
			input.RemoveImage, _ = strconv.ParseBool(v)
		}

		upload, file, err := openUpload(c, "image")
		if err != nil {
			return err
		}
		if file != nil {
			defer file.Close()
		}
		image = upload
	} else if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	n, err := h.newsService.Update(c.UserContext(), middleware.GetActor(c), id, input, image)
	if err != nil {
		return err
	}

	return c.JSON(n)
}

func (h *NewsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.newsService.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NewsHandler) Submit(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	n, err := h.newsService.SubmitToDirector(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.JSON(n)
}

func (h *NewsHandler) ApproveDirector(c *fiber.Ctx) error {
	return h.transition(c, h.newsService.ApproveByDirector)
}

func (h *NewsHandler) ApprovePresident(c *fiber.Ctx) error {
	return h.transition(c, h.newsService.ApproveByPresident)
}

func (h *NewsHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, withRequiredComments(h.newsService.Reject))
}

type newsAction func(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.News, error)

func (h *NewsHandler) transition(c *fiber.Ctx, action newsAction) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := parseComments(c)
	if err != nil {
		return err
	}

	n, err := action(c.UserContext(), middleware.GetActor(c), id, comments)
	if err != nil {
		return err
	}

	return c.JSON(n)
}

func (h *NewsHandler) History(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	history, err := h.newsService.History(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.JSON(history)
}

func (h *NewsHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.newsService.Statistics(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

func formField(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func formValue(form *multipart.Form, key string) string {
	v, _ := formField(form, key)
	return v
}
