package metrics

import (
	"context"
	"testing"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	c.RecordOperation(ctx, "insights", "success", 120)
	c.RecordOperation(ctx, "insights", "error", 30)
	c.RecordStage(ctx, "insights", "compare", 80)
	c.RecordError(ctx, "insights", "validation")
	c.SetStorageCount(ctx, "analyses", 7)

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := map[string]bool{}
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	for _, name := range []string{
		"graphapi_operations_total",
		"graphapi_operation_duration_seconds",
		"graphapi_errors_total",
		"graphapi_storage_count",
	} {
		if !found[name] {
			t.Errorf("Metric family %s not exposed", name)
		}
	}
}

func TestNoopCollector(t *testing.T) {
	c := NewNoopCollector()
	ctx := context.Background()

	// All recording paths are inert but must not panic.
	c.RecordOperation(ctx, "chat", "success", 1)
	c.RecordStage(ctx, "chat", "complete", 1)
	c.RecordError(ctx, "chat", "llm")
	c.SetStorageCount(ctx, "analyses", 0)
}
