package cache

import (
	"context"
	"testing"
)

// TestKeyCanonicalization makes sure equivalent requests share a key:
// parameter names are sorted and empty values dropped.
func TestKeyCanonicalization(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		params   map[string]string
		want     string
	}{
		{
			name:     "no parameters",
			endpoint: "list_standards",
			params:   nil,
			want:     "pliro-cache:list_standards",
		},
		{
			name:     "parameters sorted by name",
			endpoint: "list_standards",
			params:   map[string]string{"pageSize": "20", "page": "1"},
			want:     "pliro-cache:list_standards?page=1&pageSize=20",
		},
		{
			name:     "empty values dropped",
			endpoint: "list_standards",
			params:   map[string]string{"approval_status": "", "page": "0"},
			want:     "pliro-cache:list_standards?page=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.endpoint, tt.params); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEndpointKeys(t *testing.T) {
	if got := StandardsListKey(0, 100, ""); got != "pliro-cache:list_standards?page=0&pageSize=100" {
		t.Errorf("Unexpected standards list key %q", got)
	}

	if got := StandardsListKey(1, 20, "pending"); got != "pliro-cache:list_standards?approval_status=pending&page=1&pageSize=20" {
		t.Errorf("Unexpected filtered standards list key %q", got)
	}

	if got := StandardDetailKey(7); got != "pliro-cache:get_standard:7" {
		t.Errorf("Unexpected standard detail key %q", got)
	}

	if got := ProjectsListKey(2, 50); got != "pliro-cache:list_projects?page=2&pageSize=50" {
		t.Errorf("Unexpected projects list key %q", got)
	}

	if got := ProjectDetailKey(3); got != "pliro-cache:get_project:3" {
		t.Errorf("Unexpected project detail key %q", got)
	}
}

// TestInvalidationScopes verifies that list invalidation clears every page of
// its endpoint and nothing else.
func TestInvalidationScopes(t *testing.T) {
	previous := Default
	Default = NewMemoryStore(DefaultTTL)
	defer func() { Default = previous }()

	ctx := context.Background()

	SetResponse(ctx, StandardsListKey(0, 100, ""), []byte("page0"))
	SetResponse(ctx, StandardsListKey(1, 100, ""), []byte("page1"))
	SetResponse(ctx, StandardDetailKey(7), []byte("detail"))
	SetResponse(ctx, ProjectsListKey(0, 100), []byte("projects"))

	InvalidateStandardsList(ctx)

	if _, ok := GetResponse(ctx, StandardsListKey(0, 100, "")); ok {
		t.Error("Expected standards page 0 invalidated")
	}
	if _, ok := GetResponse(ctx, StandardsListKey(1, 100, "")); ok {
		t.Error("Expected standards page 1 invalidated")
	}
	if _, ok := GetResponse(ctx, StandardDetailKey(7)); !ok {
		t.Error("Expected the standard detail to survive a list invalidation")
	}
	if _, ok := GetResponse(ctx, ProjectsListKey(0, 100)); !ok {
		t.Error("Expected the projects list to survive a standards invalidation")
	}

	InvalidateStandardDetail(ctx, 7)

	if _, ok := GetResponse(ctx, StandardDetailKey(7)); ok {
		t.Error("Expected the standard detail invalidated")
	}
}
