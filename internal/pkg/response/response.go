package response

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
)

type SemanticResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Meta describes the page a list response covers.
type Meta struct {
	Limit  int
	Offset int
	Count  int
}

const (
	HeaderPageLimit  = "X-Page-Limit"
	HeaderPageOffset = "X-Page-Offset"
	HeaderPageCount  = "X-Page-Count"
)

// PageHeaders lists the headers List sets, for CORS exposure.
var PageHeaders = []string{HeaderPageLimit, HeaderPageOffset, HeaderPageCount}

const (
	MessageOK                  = "ok"
	MessageCreated             = "created"
	MessageBadRequest          = "bad request"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageInternalServerError = "internal server error"
	MessageServiceUnavailable  = "service unavailable"
	MessageError               = "error"
)

func Success(c fiber.Ctx, status int, message string, data interface{}) error {
	st := normalizeStatus(status)
	msg := normalizeMessage(message, st)
	return c.Status(st).JSON(SemanticResponse{Status: st, Message: msg, Data: data})
}

// List writes items as a bare JSON array, the shape list clients consume,
// and reports paging in headers.
func List(c fiber.Ctx, items interface{}, meta Meta) error {
	c.Set(HeaderPageLimit, strconv.Itoa(meta.Limit))
	c.Set(HeaderPageOffset, strconv.Itoa(meta.Offset))
	c.Set(HeaderPageCount, strconv.Itoa(meta.Count))
	return c.Status(fiber.StatusOK).JSON(items)
}

func Error(c fiber.Ctx, status int, message string, data interface{}) error {
	st := normalizeStatus(status)
	msg := normalizeMessage(message, st)
	return c.Status(st).JSON(SemanticResponse{Status: st, Message: msg, Data: data})
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func normalizeMessage(message string, status int) string {
	if message != "" {
		return message
	}
	return DefaultMessageForStatus(status)
}

func DefaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusOK:
		return MessageOK
	case fiber.StatusCreated:
		return MessageCreated
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusUnprocessableEntity:
		return MessageUnprocessableEntity
	case fiber.StatusServiceUnavailable:
		return MessageServiceUnavailable
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		return MessageError
	}
}
