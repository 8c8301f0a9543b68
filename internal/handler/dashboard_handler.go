package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/pkg/rbac"
	"github.com/guudweb/judicial-backend/internal/service/casefile"
	"github.com/guudweb/judicial-backend/internal/service/news"
	"github.com/guudweb/judicial-backend/internal/service/notification"
)

type DashboardHandler struct {
	caseFileService casefile.Service
	newsService     news.Service
	notifService    notification.Service
}

func NewDashboardHandler(caseFileService casefile.Service, newsService news.Service, notifService notification.Service) *DashboardHandler {
	return &DashboardHandler{
		caseFileService: caseFileService,
		newsService:     newsService,
		notifService:    notifService,
	}
}

type dashboardResponse struct {
	CaseFiles           *domain.CaseFileStats `json:"case_files"`
	News                *domain.NewsStats     `json:"news,omitempty"`
	UnreadNotifications int64                 `json:"unread_notifications"`
}

// GetStats summarizes what the caller has on their plate. News figures are
// only included for newsroom roles.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor := middleware.GetActor(c)

	caseFiles, err := h.caseFileService.Statistics(ctx, actor)
	if err != nil {
		return err
	}

	unread, err := h.notifService.GetUnreadCount(ctx, actor.ID)
	if err != nil {
		return err
	}

	resp := dashboardResponse{
		CaseFiles:           caseFiles,
		UnreadNotifications: unread,
	}

	if seesNewsStats(actor.Role) {
		if resp.News, err = h.newsService.Statistics(ctx); err != nil {
			return err
		}
	}

	return c.JSON(resp)
}

func seesNewsStats(role domain.Role) bool {
	return rbac.Allows(role, rbac.NewsCreate) ||
		rbac.Allows(role, rbac.NewsApproveDirector) ||
		rbac.Allows(role, rbac.NewsApprovePresident)
}
