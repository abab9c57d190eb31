package handlers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wuyan/lifescope/internal/api/response"
	apperrors "github.com/wuyan/lifescope/pkg/util"
)

// Relay fetches JSON from the analytics service.
type Relay interface {
	Get(path string, query url.Values) (json.RawMessage, error)
	Post(path string, query url.Values) (json.RawMessage, error)
}

// ReportHandler relays report and badge queries for the calling user.
type ReportHandler struct {
	relay Relay
}

// NewReportHandler constructs handler.
func NewReportHandler(relay Relay) *ReportHandler {
	return &ReportHandler{relay: relay}
}

// Daily handles GET /api/reports/daily/:date.
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	return h.get(c, "/api/reports/daily/%d/"+url.PathEscape(c.Params("date")), nil)
}

// Weekly handles GET /api/reports/weekly.
func (h *ReportHandler) Weekly(c *fiber.Ctx) error {
	return h.get(c, "/api/stats/weekly/%d", nil)
}

// Monthly handles GET /api/reports/monthly.
func (h *ReportHandler) Monthly(c *fiber.Ctx) error {
	return h.get(c, "/api/stats/monthly/%d", nil)
}

// List handles GET /api/reports/list.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	query := url.Values{
		"report_type": {c.Query("reportType", "daily")},
		"page":        {strconv.Itoa(c.QueryInt("page", 1))},
		"size":        {strconv.Itoa(c.QueryInt("size", 10))},
	}
	return h.get(c, "/api/reports/list/%d", query)
}

// Generate handles POST /api/reports/generate.
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetDate := c.Query("targetDate")
	if targetDate == "" {
		return apperrors.NewBadRequest("targetDate is required")
	}
	query := url.Values{
		"user_id":     {strconv.FormatInt(userID, 10)},
		"target_date": {targetDate},
		"style":       {c.Query("style", "funny")},
	}
	body, err := h.relay.Post("/api/reports/generate", query)
	if err != nil {
		return err
	}
	return response.OK(c, body)
}

// TopApps handles GET /api/reports/top-apps/:targetDate.
func (h *ReportHandler) TopApps(c *fiber.Ctx) error {
	return h.get(c, "/api/stats/top-apps/%d/"+url.PathEscape(c.Params("targetDate")), nil)
}

// Badges handles GET /api/badges.
func (h *ReportHandler) Badges(c *fiber.Ctx) error {
	return h.get(c, "/api/badges/%d", nil)
}

// AllBadges handles GET /api/badges/all.
func (h *ReportHandler) AllBadges(c *fiber.Ctx) error {
	body, err := h.relay.Get("/api/badges/all", nil)
	if err != nil {
		return err
	}
	return response.OK(c, body)
}

// get relays to pathFormat with the caller's id substituted for its %d verb.
func (h *ReportHandler) get(c *fiber.Ctx, pathFormat string, query url.Values) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	body, err := h.relay.Get(fmt.Sprintf(pathFormat, userID), query)
	if err != nil {
		return err
	}
	return response.OK(c, body)
}
