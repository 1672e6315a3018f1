package policy

import (
	"testing"

	"github.com/opsgate/opsgate/internal/tools"
)

func TestReadOnlyAutoApproved(t *testing.T) {
	eng := NewDefaultEngine()
	d := eng.Evaluate(Context{Tool: "read_file", Tier: tools.TierReadOnly})
	if d.RequiresApproval {
		t.Fatalf("tier 0 should not need approval, got: %s", d.Reason)
	}
}

func TestDestructiveRequiresApproval(t *testing.T) {
	eng := NewDefaultEngine()
	for _, tool := range []string{"delete_file", "update_record"} {
		d := eng.Evaluate(Context{Tool: tool, Tier: tools.TierDestructive})
		if !d.RequiresApproval {
			t.Fatalf("%s should require approval, got: %s", tool, d.Reason)
		}
		if d.Reason != "tier_2_requires_approval" {
			t.Fatalf("unexpected reason: %s", d.Reason)
		}
	}
}

func TestDestructiveAllowedWhenCeilingRaised(t *testing.T) {
	eng := NewDefaultEngine()
	eng.MaxAutoTier = tools.TierDestructive
	d := eng.Evaluate(Context{Tool: "delete_file", Tier: tools.TierDestructive})
	if d.RequiresApproval {
		t.Fatalf("destructive tier should pass when ceiling raised, got: %s", d.Reason)
	}
}
