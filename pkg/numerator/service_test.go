package numerator

import (
	"context"
	"testing"
	"time"

	"autodf/internal/core/apperror"
	corenum "autodf/internal/core/numerator"
)

// mockSource simulates stored references per (org, prefix, year) scope.
type mockSource struct {
	refs map[string]string
}

func scopeKey(org, prefix string, year int) string {
	return org + "/" + prefix + "/" + time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}

func (m *mockSource) LastReference(ctx context.Context, org, prefix string, year int) (string, error) {
	return m.refs[scopeKey(org, prefix, year)], nil
}

func (m *mockSource) store(org, prefix string, year int, ref string) {
	if m.refs == nil {
		m.refs = make(map[string]string)
	}
	m.refs[scopeKey(org, prefix, year)] = ref
}

func TestNextReference_EmptyScope(t *testing.T) {
	svc := New(&mockSource{})
	ctx := context.Background()
	cfg := corenum.DefaultConfig("DEV")
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextReference(ctx, cfg, "org-1", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "DEV-2026-001" {
		t.Errorf("expected DEV-2026-001, got %s", num)
	}
}

func TestNextReference_Increments(t *testing.T) {
	src := &mockSource{}
	src.store("org-1", "FACT", 2026, "FACT-2026-041")
	svc := New(src)
	ctx := context.Background()
	cfg := corenum.DefaultConfig("FACT")
	period := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextReference(ctx, cfg, "org-1", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "FACT-2026-042" {
		t.Errorf("expected FACT-2026-042, got %s", num)
	}
}

func TestNextReference_YearResetsSequence(t *testing.T) {
	src := &mockSource{}
	src.store("org-1", "FACT", 2025, "FACT-2025-117")
	svc := New(src)
	ctx := context.Background()
	cfg := corenum.DefaultConfig("FACT")

	// 2025 scope continues
	num, err := svc.NextReference(ctx, cfg, "org-1", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "FACT-2025-118" {
		t.Errorf("expected FACT-2025-118, got %s", num)
	}

	// 2026 scope restarts at 1
	num, err = svc.NextReference(ctx, cfg, "org-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "FACT-2026-001" {
		t.Errorf("expected FACT-2026-001, got %s", num)
	}
}

func TestNextReference_ScopedPerOrganization(t *testing.T) {
	src := &mockSource{}
	src.store("org-1", "DEV", 2026, "DEV-2026-009")
	svc := New(src)
	ctx := context.Background()
	cfg := corenum.DefaultConfig("DEV")
	period := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextReference(ctx, cfg, "org-2", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "DEV-2026-001" {
		t.Errorf("expected DEV-2026-001 for fresh org scope, got %s", num)
	}
}

func TestNextReference_SequenceGrowsPastPadWidth(t *testing.T) {
	src := &mockSource{}
	src.store("org-1", "FACT", 2026, "FACT-2026-999")
	svc := New(src)
	ctx := context.Background()
	cfg := corenum.DefaultConfig("FACT")
	period := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextReference(ctx, cfg, "org-1", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "FACT-2026-1000" {
		t.Errorf("expected FACT-2026-1000, got %s", num)
	}
}

func TestNextReference_MissingOrganization(t *testing.T) {
	svc := New(&mockSource{})
	ctx := context.Background()
	cfg := corenum.DefaultConfig("DEV")

	_, err := svc.NextReference(ctx, cfg, "", time.Now())
	if err == nil {
		t.Fatal("expected error for empty organization")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperror.CodeInvalidScope {
		t.Errorf("expected %s, got %s", apperror.CodeInvalidScope, appErr.Code)
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"DEV-2026-001", 1},
		{"FACT-2026-042", 42},
		{"FACT-2026-1000", 1000},
		{"NOYEAR-007", 7},
		{"garbage", -1},
		{"DEV-2026-", -1},
		{"DEV-2026-abc", -1},
		{"", -1},
	}
	for _, c := range cases {
		if got := ParseNumber(c.in); got != c.want {
			t.Errorf("ParseNumber(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
