// Package resources exposes read-only MCP resources backed by the planner.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/planweave/planweave/pkg/planner"
)

// RegisterPlannerResources registers the planning context resource. It is the
// same bundle the server assembles per turn, exposed so MCP clients can
// inspect what the agent sees.
func RegisterPlannerResources(s *mcpserver.MCPServer, plannerService *planner.Service) {
	contextResource := mcp.NewResource(
		"planner://context",
		"Planning Context",
		mcp.WithResourceDescription("The current day's schedule, active goals, busy blocks and planning rules for the authenticated user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(contextResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		bundle, err := plannerService.BuildContext(ctx, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("failed to build planning context: %w", err)
		}

		encoded, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode planning context: %w", err)
		}

		return []mcp.ResourceContents{
			&mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(encoded),
			},
		}, nil
	})
}
