package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// resolveTaskID resolves a task identifier which can be:
//   - a full stored id
//   - an occurrence id, "{id}_{YYYY-MM-DD}", where {id} may itself be a prefix
//   - a unique prefix of a stored id
func resolveTaskID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("task ID is required")
	}
	tasks, err := app.Tasks.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := tasks[input]; ok {
		return input, nil
	}
	if orig, key, ok := domain.SplitInstanceID(input); ok {
		id, err := matchPrefix(tasks, orig)
		if err != nil {
			return "", err
		}
		return domain.InstanceID(id, key), nil
	}
	return matchPrefix(tasks, input)
}

func matchPrefix(tasks domain.TaskMap, input string) (string, error) {
	if _, ok := tasks[input]; ok {
		return input, nil
	}
	var matches []string
	for id := range tasks {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveOptionalTaskID resolves input when set and passes "" through.
func resolveOptionalTaskID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", nil
	}
	return resolveTaskID(ctx, app, input)
}
