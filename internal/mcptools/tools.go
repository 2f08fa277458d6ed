// Package mcptools exposes the draft engine as Model Context Protocol tools
// so that an agent can read the board and draft on the clock.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/service"
)

const version = "0.1.0"

type EmptyArgs struct{}

type TeamArgs struct {
	TeamID string `json:"team_id,omitempty" jsonschema:"Team id such as team-1 (default: team on the clock)"`
}

type PlayersArgs struct {
	Position string `json:"position,omitempty" jsonschema:"Position filter: F, M, D or G"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum players returned (default 20)"`
}

type OutlookArgs struct {
	PlayerID  string `json:"player_id" jsonschema:"Player id (required)"`
	Gameweeks int    `json:"gameweeks,omitempty" jsonschema:"Fixture horizon in gameweeks (default 5)"`
}

// ToolInfo names one registered tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server is the MCP server and the list of tools it carries
type Server struct {
	*mcp.Server
	Tools []ToolInfo
}

func addTool[T any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	s.Tools = append(s.Tools, ToolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(s.Server, tool, handler)
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}

func toolMarshal(v interface{}) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

// NewServer registers every draft tool against svc
func NewServer(svc *service.Service) *Server {
	s := &Server{
		Server: mcp.NewServer(&mcp.Implementation{Name: "fantasy-draft", Version: version}, nil),
	}

	addTool(s, &mcp.Tool{
		Name:        "draft_state",
		Description: "Current draft status, pick number, team on the clock and rosters",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, any, error) {
		return toolMarshal(svc.State())
	})

	addTool(s, &mcp.Tool{
		Name:        "recommendations",
		Description: "Ranked legal picks with score breakdown, tags and roster insights for a team",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TeamArgs) (*mcp.CallToolResult, any, error) {
		recs, err := svc.Recommendations(args.TeamID)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolMarshal(recs)
	})

	addTool(s, &mcp.Tool{
		Name:        "ai_pick",
		Description: "Draft the strategy engine's choice for whichever team is on the clock",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult, any, error) {
		rec, err := svc.AutoPick()
		if err != nil {
			return toolError(err), nil, nil
		}
		logger.Info("MCP pick applied", "player_id", rec.PlayerID, "team_id", rec.TeamID, "skipped", rec.Skipped)
		return toolMarshal(rec)
	})

	addTool(s, &mcp.Tool{
		Name:        "compliance",
		Description: "Lineup legality report with a 0-100 compliance score for a team",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TeamArgs) (*mcp.CallToolResult, any, error) {
		id := args.TeamID
		if id == "" {
			id = svc.State().CurrentTeamID
		}
		report, err := svc.Compliance(id)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolMarshal(report)
	})

	addTool(s, &mcp.Tool{
		Name:        "fixture_outlook",
		Description: "Upcoming fixture difficulty and predicted minutes for a player",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args OutlookArgs) (*mcp.CallToolResult, any, error) {
		if args.PlayerID == "" {
			return toolError(fmt.Errorf("player_id is required")), nil, nil
		}
		out, err := svc.Outlook(args.PlayerID, args.Gameweeks)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolMarshal(out)
	})

	addTool(s, &mcp.Tool{
		Name:        "available_players",
		Description: "Undrafted players ordered by value over replacement",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PlayersArgs) (*mcp.CallToolResult, any, error) {
		pos := models.Position(args.Position)
		if pos != "" && !pos.Valid() {
			return toolError(fmt.Errorf("unknown position %q", args.Position)), nil, nil
		}
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		return toolMarshal(svc.Players(pos, limit))
	})

	return s
}

// Handler serves the tools over streamable HTTP
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.Server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}
