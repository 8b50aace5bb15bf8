package handler

import (
	"skill-intake/internal/delivery/http/dto"
	"skill-intake/internal/delivery/http/middleware"
	"skill-intake/internal/pkg/response"
	"skill-intake/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SkillHandler struct {
	uc usecase.SkillUsecase
}

func NewSkillHandler(uc usecase.SkillUsecase) *SkillHandler {
	return &SkillHandler{uc: uc}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/skills", h.List)
}

func (h *SkillHandler) List(c fiber.Ctx) error {
	items, err := h.uc.ListSkills(c.Context())
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, "Internal server error: "+internalDetail(err), nil, err)
	}

	res := make([]dto.SkillResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.SkillResponse{SkillID: it.ID, SkillName: it.Name})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
