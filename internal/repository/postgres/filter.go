package postgres

import (
	"fmt"
	"strings"

	"tiktask/internal/models/task"
)

// buildFilterClauses собирает конъюнкцию условий выборки и список
// bind-параметров. Нумерация плейсхолдеров начинается с startIdx, так
// что фрагмент можно подставлять после уже связанных параметров.
// Пользовательский ввод никогда не попадает в текст запроса.
func buildFilterClauses(f task.Filters, alias string, startIdx int) ([]string, []any) {
	clauses := []string{}
	args := []any{}
	idx := startIdx

	switch f.Status {
	case task.StatusDone:
		clauses = append(clauses, fmt.Sprintf("%s.completed = TRUE", alias))
	case task.StatusPending:
		clauses = append(clauses, fmt.Sprintf("%s.completed = FALSE", alias))
	}

	if f.StartDate != "" {
		clauses = append(clauses, fmt.Sprintf("%s.due_date >= $%d::date", alias, idx))
		args = append(args, f.StartDate)
		idx++
	}

	if f.EndDate != "" {
		clauses = append(clauses, fmt.Sprintf("%s.due_date <= $%d::date", alias, idx))
		args = append(args, f.EndDate)
		idx++
	}

	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(%s.title) LIKE $%d OR LOWER(COALESCE(%s.description, '')) LIKE $%d)",
			alias, idx, alias, idx+1))
		args = append(args, like, like)
	}

	return clauses, args
}
