package mcpserver

import (
	"context"
	"fmt"

	"github.com/jfbarahonag/mcp-logs/internal/models"
	"github.com/jfbarahonag/mcp-logs/internal/services"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolService is implemented by services.ToolFacade.
type ToolService interface {
	GetUserLogs(ctx context.Context, in services.GetUserLogsInput) (services.GetUserLogsResult, error)
	BuildReport(ctx context.Context, in services.BuildReportInput) (string, error)
}

func GetUserLogsTool() *mcp.Tool {
	return &mcp.Tool{
		Name: services.ToolGetUserLogs,
		Description: "Returns the activity logs of a user identified by document_id, newest first. " +
			"Dates are YYYY-MM-DD and both ends are inclusive; the default window is the last 30 days. " +
			"limit defaults to 100 and is clamped to 1-500.",
	}
}

func GetUserLogsHandler(tools ToolService) mcp.ToolHandlerFor[services.GetUserLogsInput, services.GetUserLogsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input services.GetUserLogsInput) (*mcp.CallToolResult, services.GetUserLogsResult, error) {
		result, err := tools.GetUserLogs(ctx, input)
		if err != nil {
			return nil, services.GetUserLogsResult{}, toolError(err)
		}
		return nil, result, nil
	}
}

func BuildReportTool() *mcp.Tool {
	return &mcp.Tool{
		Name: services.ToolBuildReport,
		Description: "Renders a report of a user's activity over up to 500 log entries in the date range. " +
			"template_name selects a file in the templates directory (default " + services.DefaultReportTemplate + "). " +
			"Templates use Go text/template syntax (html/template for .html and .xml), not Jinja. " +
			"Returns the rendered document as text.",
	}
}

// BuildReportHandler answers with the rendered text only. The output type is
// any so no output schema is advertised.
func BuildReportHandler(tools ToolService) mcp.ToolHandlerFor[services.BuildReportInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input services.BuildReportInput) (*mcp.CallToolResult, any, error) {
		report, err := tools.BuildReport(ctx, input)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: report}},
		}, nil, nil
	}
}

// toolError prefixes err with its kind so clients can tell failures apart
// from the text alone, e.g. "TemplateNotFound: ...".
func toolError(err error) error {
	return fmt.Errorf("%s: %w", models.ErrorKind(err), err)
}
