package handler

import (
	"errors"
	"strconv"
	"strings"

	"skill-intake/internal/delivery/http/dto"
	"skill-intake/internal/delivery/http/middleware"
	"skill-intake/internal/domain/submission"
	"skill-intake/internal/pkg/response"
	"skill-intake/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const (
	MessageSubmissionCreated = "Submission stored successfully"
	MessageSubmissionMerged  = "User already exists; new skills added"
	MessageSubmissionExists  = "User with this email already exists with the same skills"
	MessageUserMismatch      = "User with this email already exists with different username or location"
	MessageSubmitConflict    = "Submission conflicts with a concurrent update"
)

type SubmissionHandler struct {
	uc usecase.SubmissionUsecase
}

func NewSubmissionHandler(uc usecase.SubmissionUsecase) *SubmissionHandler {
	return &SubmissionHandler{uc: uc}
}

func (h *SubmissionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/submit-form", h.Submit)
	r.Get("/submissions", h.List)
}

func (h *SubmissionHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitFormRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.Submit(c.Context(), req.ToInput())
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}

	body := dto.NewSubmissionResponse(res.Submission)
	if res.Outcome == usecase.OutcomeMerged {
		return response.Success(c, fiber.StatusOK, MessageSubmissionMerged, dto.MergeResponse{
			SubmissionResponse: body,
			AddedSkills:        res.AddedSkills,
		})
	}
	return response.Success(c, fiber.StatusCreated, MessageSubmissionCreated, body)
}

func (h *SubmissionHandler) List(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid offset", nil, err)
	}

	page, err := h.uc.ListSubmissions(c.Context(), limit, offset)
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}

	res := dto.NewSubmissionListResponse(page.Items)
	return response.List(c, res, response.Meta{Limit: page.Limit, Offset: page.Offset, Count: len(res)})
}

// queryInt returns 0 for an absent parameter.
func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func mapSubmissionUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, validationMessage(err), nil, err)
	case errors.Is(err, usecase.ErrSubmissionExists):
		return middleware.NewAppError(fiber.StatusConflict, MessageSubmissionExists, nil, err)
	case errors.Is(err, usecase.ErrUserMismatch):
		return middleware.NewAppError(fiber.StatusConflict, MessageUserMismatch, nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, MessageSubmitConflict, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "Internal server error: "+internalDetail(err), nil, err)
	}
}

// validationMessage strips the sentinel prefixes so clients see only the
// field problem, e.g. "email is required".
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), usecase.ErrInvalidInput.Error()+": ")
	return strings.TrimPrefix(msg, submission.ErrInvalid.Error()+": ")
}

func internalDetail(err error) string {
	return strings.TrimPrefix(err.Error(), usecase.ErrInternal.Error()+": ")
}
