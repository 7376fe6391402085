package service

import (
	"strings"

	"github.com/avolkov/pingpong-stats-service/internal/repository"
)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

func isValidServeType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "free", "cross":
		return true
	default:
		return false
	}
}
