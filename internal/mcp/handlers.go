package mcptools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"eventreg/internal/backup"
	"eventreg/internal/models"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type handlers struct {
	db      *sql.DB
	backups *backup.Manager
}

func (h *handlers) listRegistrations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	limit := defaultListLimit
	if l, ok := args["limit"]; ok {
		v, err := toInt(l)
		if err != nil || v <= 0 {
			return mcp.NewToolResultError("limit must be a positive number"), nil
		}
		limit = min(v, maxListLimit)
	}

	offset := 0
	if o, ok := args["offset"]; ok {
		if v, err := toInt(o); err == nil && v > 0 {
			offset = v
		}
	}

	registrations, err := models.GetRegistrationsPaginated(ctx, h.db, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list registrations: %v", err)), nil
	}

	dtos := make([]RegistrationDTO, 0, len(registrations))
	for _, r := range registrations {
		dtos = append(dtos, RegistrationToDTO(r))
	}

	return jsonResult(dtos)
}

func (h *handlers) countRegistrations(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total, err := models.CountRegistrations(ctx, h.db)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count registrations: %v", err)), nil
	}
	return jsonResult(map[string]any{"count": total})
}

func (h *handlers) backupDatabase(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bi, err := h.backups.BackupDatabase(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("backup failed: %v", err)), nil
	}
	removed := h.backups.CleanOldBackups()

	return jsonResult(map[string]any{
		"backup":  BackupToDTO(*bi),
		"removed": removed,
	})
}

func (h *handlers) listBackups(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.backups.ListBackups()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list backups: %v", err)), nil
	}

	dtos := make([]BackupDTO, 0, len(list))
	for _, b := range list {
		dtos = append(dtos, BackupToDTO(b))
	}
	return jsonResult(dtos)
}

// helpers

func toInt(v any) (int, error) {
	switch val := v.(type) {
	case float64:
		return int(val), nil
	case int:
		return val, nil
	case string:
		return strconv.Atoi(val)
	case json.Number:
		n, err := val.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
