// ABOUTME: MCP resource implementations for the workout tracker.
// ABOUTME: Provides workout://draft, workout://history/recent, and workout://stats/summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const recentHistoryLimit = 10

func (s *Server) registerResources() {
	// workout://draft - The active draft session, if any
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "workout://draft",
		Name:        "Active Session",
		Description: "The draft session in progress with its slots, options and sets",
		MIMEType:    "application/json",
	}, s.handleDraftResource)

	// workout://history/recent - Last 10 finalized sessions
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "workout://history/recent",
		Name:        "Recent Sessions",
		Description: "Last 10 finalized sessions with set counts, volume and PR counts",
		MIMEType:    "application/json",
	}, s.handleRecentHistoryResource)

	// workout://stats/summary - Dashboard of totals, streak and weekly muscle volume
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "workout://stats/summary",
		Name:        "Training Summary Dashboard",
		Description: "Overall totals, per-template stats, current streak and weekly volume by muscle",
		MIMEType:    "application/json",
	}, s.handleStatsSummaryResource)
}

// Resource handlers

func (s *Server) handleDraftResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	draft, err := s.repo.GetActiveDraft()
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	result := map[string]interface{}{
		"active": false,
	}
	if draft != nil {
		view, err := s.draftView(draft.ID)
		if err != nil {
			return nil, err
		}
		result["active"] = true
		result["session"] = view
	}

	return jsonResource("workout://draft", result)
}

func (s *Server) handleRecentHistoryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	history, err := s.repo.ListHistory(recentHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	prCounts, err := s.repo.PRCountsBySession()
	if err != nil {
		return nil, fmt.Errorf("failed to count personal records: %w", err)
	}

	sessions := make([]map[string]interface{}, 0, len(history))
	for _, h := range history {
		sessions = append(sessions, map[string]interface{}{
			"session":          h,
			"personal_records": prCounts[h.ID],
		})
	}

	result := map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	}

	return jsonResource("workout://history/recent", result)
}

func (s *Server) handleStatsSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	overall, err := s.repo.OverallStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get overall stats: %w", err)
	}

	templates, err := s.repo.PerTemplateStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get template stats: %w", err)
	}

	muscles, err := s.repo.WeeklyVolumeByMuscle()
	if err != nil {
		return nil, fmt.Errorf("failed to get muscle volume: %w", err)
	}

	streak, err := s.repo.CurrentStreak()
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	result := map[string]interface{}{
		"generated_at":         time.Now().Format(time.RFC3339),
		"overall":              overall,
		"templates":            templates,
		"weekly_muscle_volume": muscles,
		"streak":               streak,
	}

	return jsonResource("workout://stats/summary", result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
