package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/wuyan/lifescope/internal/api/dto"
	"github.com/wuyan/lifescope/internal/api/response"
	"github.com/wuyan/lifescope/internal/api/validation"
	"github.com/wuyan/lifescope/internal/domain"
	"github.com/wuyan/lifescope/internal/service"
	apperrors "github.com/wuyan/lifescope/pkg/util"
)

// DataHandler accepts behavior data uploads.
type DataHandler struct {
	data *service.DataService
}

// NewDataHandler constructs handler.
func NewDataHandler(dataService *service.DataService) *DataHandler {
	return &DataHandler{data: dataService}
}

// Upload handles POST /api/data/upload.
func (h *DataHandler) Upload(c *fiber.Ctx) error {
	var req dto.BehaviorDataRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := h.submit(c, []dto.BehaviorDataRequest{req}); err != nil {
		return err
	}
	return response.OKWithMessage(c, "data submitted", 1)
}

// Batch handles POST /api/data/batch.
func (h *DataHandler) Batch(c *fiber.Ctx) error {
	var reqs []dto.BehaviorDataRequest
	if err := c.BodyParser(&reqs); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := validation.Each(reqs); err != nil {
		return err
	}
	n, err := h.submit(c, reqs)
	if err != nil {
		return err
	}
	return response.OKWithMessage(c, fmt.Sprintf("submitted %d records", n), n)
}

func (h *DataHandler) submit(c *fiber.Ctx, reqs []dto.BehaviorDataRequest) (int, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return 0, err
	}
	records := make([]domain.BehaviorRecord, 0, len(reqs))
	for _, req := range reqs {
		record, err := req.ToRecord()
		if err != nil {
			return 0, apperrors.NewBadRequest("record_date: must be a date formatted as 2006-01-02")
		}
		records = append(records, record)
	}
	return h.data.Submit(c.UserContext(), userID, records)
}
