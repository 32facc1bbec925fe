package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) muscleGroups(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, map[string][]string{
		"muscle_groups": catalog.MuscleGroups,
		"equipment":     catalog.Equipment,
	})
}

func (h *handlers) logDates(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	dates, err := h.ds.GetLogDates(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, dates)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
