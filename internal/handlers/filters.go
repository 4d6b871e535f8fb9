package handlers

import (
	"net/url"
	"strings"
	"time"

	"tiktask/internal/models/task"
)

// parseFilters достаёт необязательные условия выборки из query-параметров.
// Неизвестный токен статуса и дата не по формату игнорируются, а не
// превращаются в ошибку.
func parseFilters(query url.Values) task.Filters {
	filters := task.Filters{}

	switch status := task.Status(strings.ToLower(query.Get("status"))); status {
	case task.StatusDone, task.StatusPending:
		filters.Status = status
	}

	if start := query.Get("startDate"); validDate(start) {
		filters.StartDate = start
	}

	if end := query.Get("endDate"); validDate(end) {
		filters.EndDate = end
	}

	if search := strings.TrimSpace(query.Get("search")); search != "" {
		filters.Search = search
	}

	return filters
}

func validDate(value string) bool {
	if value == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
