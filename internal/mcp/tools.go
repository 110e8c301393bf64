package mcptools

import (
	"database/sql"

	"eventreg/internal/backup"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools adds the registration tools to s. Backup tools are only
// added when bm is non-nil.
func RegisterTools(s *server.MCPServer, db *sql.DB, bm *backup.Manager) {
	h := &handlers{db: db, backups: bm}

	s.AddTool(
		mcp.NewTool("list_registrations",
			mcp.WithDescription("List event registrations, newest first, with name, phone number, comment and registration time."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithNumber("limit", mcp.Description("Number of registrations to return (default 50, max 500)")),
			mcp.WithNumber("offset", mcp.Description("Number of registrations to skip")),
		),
		h.listRegistrations,
	)

	s.AddTool(
		mcp.NewTool("count_registrations",
			mcp.WithDescription("Count how many people have registered for the event."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
		),
		h.countRegistrations,
	)

	if bm == nil {
		return
	}

	s.AddTool(
		mcp.NewTool("backup_database",
			mcp.WithDescription("Create a gzip-compressed backup of the registration database and prune backups past the retention period."),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
		),
		h.backupDatabase,
	)

	s.AddTool(
		mcp.NewTool("list_backups",
			mcp.WithDescription("List stored database backups, newest first."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
		),
		h.listBackups,
	)
}
