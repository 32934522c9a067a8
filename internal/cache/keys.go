package cache

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
)

const (
	endpointListStandards = "list_standards"
	endpointGetStandard   = "get_standard"
	endpointListProjects  = "list_projects"
	endpointGetProject    = "get_project"
)

// Key builds a cache key from an endpoint name and its query parameters.
// Parameter names are sorted and empty values dropped so equivalent requests
// always share one key.
func Key(endpoint string, params map[string]string) string {
	key := Prefix + endpoint

	names := make([]string, 0, len(params))

	for name, value := range params {
		if value == "" {
			continue
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		return key
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))

	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	return key + "?" + strings.Join(pairs, "&")
}

func StandardsListKey(page, pageSize int, approvalStatus string) string {
	return Key(endpointListStandards, map[string]string{
		"page":            strconv.Itoa(page),
		"pageSize":        strconv.Itoa(pageSize),
		"approval_status": approvalStatus,
	})
}

func StandardDetailKey(id uint) string {
	return Key(fmt.Sprintf("%s:%d", endpointGetStandard, id), nil)
}

func ProjectsListKey(page, pageSize int) string {
	return Key(endpointListProjects, map[string]string{
		"page":     strconv.Itoa(page),
		"pageSize": strconv.Itoa(pageSize),
	})
}

func ProjectDetailKey(id uint) string {
	return Key(fmt.Sprintf("%s:%d", endpointGetProject, id), nil)
}

// InvalidateStandardsList drops every cached standards list page. Failures
// are logged and swallowed; a stale entry expires on its own within
// DefaultTTL.
func InvalidateStandardsList(ctx context.Context) {
	invalidatePattern(ctx, Prefix+endpointListStandards+"*")
}

// InvalidateStandardDetail drops the cached detail entry for one standard.
func InvalidateStandardDetail(ctx context.Context, id uint) {
	invalidateKeys(ctx, StandardDetailKey(id))
}

// InvalidateProjectsList drops every cached projects list page.
func InvalidateProjectsList(ctx context.Context) {
	invalidatePattern(ctx, Prefix+endpointListProjects+"*")
}

// InvalidateProjectDetail drops the cached detail entry for one project.
func InvalidateProjectDetail(ctx context.Context, id uint) {
	invalidateKeys(ctx, ProjectDetailKey(id))
}

func invalidatePattern(ctx context.Context, pattern string) {
	if err := Default.DeletePattern(ctx, pattern); err != nil {
		log.Printf("Error invalidating cache by pattern: %v", err)
	}
}

func invalidateKeys(ctx context.Context, keys ...string) {
	if err := Default.Delete(ctx, keys...); err != nil {
		log.Printf("Error invalidating cache keys: %v", err)
	}
}
