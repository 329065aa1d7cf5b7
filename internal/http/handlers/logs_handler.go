package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jfbarahonag/mcp-logs/internal/http/dto"
	"github.com/jfbarahonag/mcp-logs/internal/middleware"
	"github.com/jfbarahonag/mcp-logs/internal/models"
	"github.com/jfbarahonag/mcp-logs/internal/services"
	"go.uber.org/zap"
)

type ToolService interface {
	GetUserLogs(ctx context.Context, in services.GetUserLogsInput) (services.GetUserLogsResult, error)
	BuildReport(ctx context.Context, in services.BuildReportInput) (string, error)
}

// LogsHandler serves the tools over REST for clients without MCP.
type LogsHandler struct {
	tools ToolService
	log   *zap.Logger
}

func NewLogsHandler(tools ToolService, log *zap.Logger) *LogsHandler {
	return &LogsHandler{tools: tools, log: log}
}

func (h *LogsHandler) GetUserLogs(c *fiber.Ctx) error {
	var q dto.LogsQuery
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err))
	}

	in := services.GetUserLogsInput{
		DocumentID: utils.CopyString(c.Params("document_id")),
		StartDate:  optional(q.StartDate),
		EndDate:    optional(q.EndDate),
	}
	if q.Limit != "" {
		n, err := strconv.Atoi(q.Limit)
		if err != nil {
			return h.fail(c, fmt.Errorf("%w: limit %q is not a number", models.ErrInvalidArgument, q.Limit))
		}
		in.Limit = &n
	}

	result, err := h.tools.GetUserLogs(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: result})
}

func (h *LogsHandler) BuildReport(c *fiber.Ctx) error {
	var q dto.LogsQuery
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", models.ErrInvalidArgument, err))
	}

	in := services.BuildReportInput{
		DocumentID:   utils.CopyString(c.Params("document_id")),
		StartDate:    optional(q.StartDate),
		EndDate:      optional(q.EndDate),
		TemplateName: optional(q.Template),
	}

	report, err := h.tools.BuildReport(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}

	name := services.DefaultReportTemplate
	if in.TemplateName != nil {
		name = *in.TemplateName
	}
	c.Set(fiber.HeaderContentType, services.ReportContentType(name))
	return c.SendString(report)
}

// fail writes err as an ErrorResponse. Client errors carry their message;
// server errors only their kind.
func (h *LogsHandler) fail(c *fiber.Ctx, err error) error {
	kind := models.ErrorKind(err)
	status := statusFor(kind)
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)

	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed", zap.String("request_id", reqID), zap.String("kind", kind), zap.Error(err))
		msg = "internal error"
		if errors.Is(err, models.ErrStoreUnavailable) {
			msg = "log store unavailable"
		}
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Kind: kind, RequestID: reqID})
}

func statusFor(kind string) int {
	switch kind {
	case models.KindInvalidArgument, models.KindInvalidDateFormat:
		return fiber.StatusBadRequest
	case models.KindTemplateNotFound:
		return fiber.StatusNotFound
	case models.KindStoreUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// optional copies s out of the request buffer; "" means absent.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	s = utils.CopyString(s)
	return &s
}
