package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/oceanai/sagarmitra/internal/store"
)

func seedCatches(t *testing.T, st *store.Store, userID string, n int) []*store.CatchRecord {
	t.Helper()
	records := make([]*store.CatchRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := &store.CatchRecord{
			UserID:       userID,
			Species:      fmt.Sprintf("Pomfret %d", i),
			Location:     "Versova",
			Confidence:   0.92,
			WeightKg:     2.5,
			PricePerKg:   800,
			QualityGrade: "Premium",
			Sustainable:  true,
		}
		if err := st.AddCatch(rec); err != nil {
			t.Fatalf("seed catch: %v", err)
		}
		records = append(records, rec)
	}
	return records
}

func TestCatchHistoryPagination(t *testing.T) {
	r, st := testRegistry(t)
	seedCatches(t, st, "user-1", 7)
	ctx := WithUserID(context.Background(), "user-1")

	out, err := r.Execute(ctx, "get_catch_history", map[string]any{"page": 1})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Page 1, showing 5 records") {
		t.Errorf("expected first page of 5, got:\n%s", out)
	}
	if !strings.Contains(out, "Ask for page 2") {
		t.Errorf("expected more-pages hint, got:\n%s", out)
	}

	out, err = r.Execute(ctx, "get_catch_history", map[string]any{"page": 2})
	if err != nil {
		t.Fatalf("Execute page 2: %v", err)
	}
	if !strings.Contains(out, "Page 2, showing 2 records") {
		t.Errorf("expected second page of 2, got:\n%s", out)
	}
	if strings.Contains(out, "Ask for page 3") {
		t.Errorf("did not expect more pages after page 2, got:\n%s", out)
	}
}

func TestCatchHistoryEmpty(t *testing.T) {
	r, _ := testRegistry(t)
	ctx := WithUserID(context.Background(), "user-1")

	out, err := r.Execute(ctx, "get_catch_history", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "No catch records found yet") {
		t.Errorf("expected empty-history message, got %q", out)
	}

	out, err = r.Execute(ctx, "get_catch_history", map[string]any{"page": 3})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "No more records on page 3") {
		t.Errorf("expected empty-page message, got %q", out)
	}
}

func TestCatchHistoryRequiresIdentity(t *testing.T) {
	r, _ := testRegistry(t)
	if _, err := r.Execute(context.Background(), "get_catch_history", nil); err == nil {
		t.Fatal("expected error without user identity on context")
	}
}

func TestCatchDetails(t *testing.T) {
	r, st := testRegistry(t)
	records := seedCatches(t, st, "user-1", 1)
	ctx := WithUserID(context.Background(), "user-1")

	out, err := r.Execute(ctx, "get_catch_details", map[string]any{"catch_id": records[0].ID})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Pomfret 0") {
		t.Errorf("expected species, got:\n%s", out)
	}
	if !strings.Contains(out, "Confidence: 92.0%") {
		t.Errorf("expected confidence percent, got:\n%s", out)
	}
	// 2.5 kg at ₹800/kg.
	if !strings.Contains(out, "₹2000 (@ ₹800/kg)") {
		t.Errorf("expected estimated value, got:\n%s", out)
	}
	if !strings.Contains(out, "Sustainability: Sustainable") {
		t.Errorf("expected sustainability, got:\n%s", out)
	}
}

func TestCatchDetailsOwnership(t *testing.T) {
	r, st := testRegistry(t)
	records := seedCatches(t, st, "user-1", 1)

	ctx := WithUserID(context.Background(), "user-2")
	out, err := r.Execute(ctx, "get_catch_details", map[string]any{"catch_id": records[0].ID})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "do not have permission") {
		t.Errorf("expected permission denial, got %q", out)
	}
}

func TestCatchDetailsNotFound(t *testing.T) {
	r, _ := testRegistry(t)
	ctx := WithUserID(context.Background(), "user-1")

	out, err := r.Execute(ctx, "get_catch_details", map[string]any{"catch_id": "catch_missing"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Could not find any catch record") {
		t.Errorf("expected not-found message, got %q", out)
	}
}
