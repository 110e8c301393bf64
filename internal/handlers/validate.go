package handlers

import (
	"strconv"
	"strings"
)

func sanitizeLogInput(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

// parsePage reads a 1-based page number, treating junk as the first page.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// validateUsername rejects usernames that cannot exist before hitting bcrypt.
func validateUsername(username string) bool {
	return username != "" && len(username) <= 64 && !strings.ContainsAny(username, "\r\n\x00")
}
