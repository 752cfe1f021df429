package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"snaptile/internal/layout"
	"snaptile/internal/model"
)

const (
	ServerName    = "snaptile"
	ServerVersion = "0.1.0"
)

// Server exposes layout operations as MCP tools over stdio.
type Server struct {
	mcpServer *mcpsdk.Server
	layouts   *layout.Service
}

// NewServer creates the MCP server backed by the layout service.
func NewServer(layouts *layout.Service) *Server {
	s := &Server{
		layouts: layouts,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Snapshot the current desktop window arrangement (position, size, state, monitor per window) and persist it as a named layout.",
	}, s.handleSaveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_layout",
		Description: "Restore a saved layout by id or name. Windows are re-identified best-effort by title/class/process; restoring a subset is normal when some windows no longer exist.",
	}, s.handleRestoreLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List saved layouts with window counts and active state, optionally filtered by name substring.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_layout",
		Description: "Delete a saved layout by id.",
	}, s.handleDeleteLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_layout",
		Description: "Mark a layout as the single active layout. Any previously active layout is deactivated in the same transaction.",
	}, s.handleActivateLayout)
}

func (s *Server) handleSaveLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args SaveLayoutInput) (*mcpsdk.CallToolResult, SaveLayoutOutput, error) {
	profile, err := s.layouts.SaveCurrentLayout(ctx, args.Name, args.Description)
	if err != nil {
		return nil, SaveLayoutOutput{}, err
	}
	return nil, SaveLayoutOutput{
		ID:          profile.ID,
		Name:        profile.Name,
		WindowCount: len(profile.Windows),
	}, nil
}

func (s *Server) handleRestoreLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args RestoreLayoutInput) (*mcpsdk.CallToolResult, RestoreLayoutOutput, error) {
	id := args.ID
	if id == "" {
		if args.Name == "" {
			return nil, RestoreLayoutOutput{}, fmt.Errorf("either id or name is required")
		}
		matches, err := s.layouts.GetLayoutsByName(ctx, args.Name)
		if err != nil {
			return nil, RestoreLayoutOutput{}, err
		}
		if len(matches) == 0 {
			return nil, RestoreLayoutOutput{}, fmt.Errorf("no layout matches name %q", args.Name)
		}
		id = matches[0].ID
	}

	restored, err := s.layouts.RestoreLayout(ctx, id, nil)
	if err != nil {
		return nil, RestoreLayoutOutput{}, err
	}
	return nil, RestoreLayoutOutput{ID: id, Restored: restored}, nil
}

func (s *Server) handleListLayouts(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	profiles, err := s.listProfiles(ctx, args.Name)
	if err != nil {
		return nil, ListLayoutsOutput{}, err
	}
	var layouts []LayoutSummary
	for _, p := range profiles {
		layouts = append(layouts, LayoutSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			WindowCount: len(p.Windows),
			IsActive:    p.IsActive,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return nil, ListLayoutsOutput{Layouts: layouts}, nil
}

func (s *Server) listProfiles(ctx context.Context, name string) ([]model.LayoutProfile, error) {
	if name != "" {
		return s.layouts.GetLayoutsByName(ctx, name)
	}
	return s.layouts.GetAllLayouts(ctx)
}

func (s *Server) handleDeleteLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args DeleteLayoutInput) (*mcpsdk.CallToolResult, DeleteLayoutOutput, error) {
	if err := s.layouts.DeleteLayout(ctx, args.ID); err != nil {
		return nil, DeleteLayoutOutput{}, err
	}
	return nil, DeleteLayoutOutput{Deleted: true}, nil
}

func (s *Server) handleActivateLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args ActivateLayoutInput) (*mcpsdk.CallToolResult, ActivateLayoutOutput, error) {
	if err := s.layouts.ActivateLayout(ctx, args.ID); err != nil {
		return nil, ActivateLayoutOutput{}, err
	}
	return nil, ActivateLayoutOutput{Activated: true}, nil
}
