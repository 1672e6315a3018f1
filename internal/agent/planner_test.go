package agent

import (
	"strings"
	"testing"
)

func TestParseApprovalToken(t *testing.T) {
	cases := []struct {
		input   string
		granted bool
		isToken bool
	}{
		{"APPROVE", true, true},
		{"approve", true, true},
		{"  Deny  ", false, true},
		{"DENY", false, true},
		{"approve it", false, false},
		{"read /docs/readme.md", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		granted, isToken := ParseApprovalToken(tc.input)
		if granted != tc.granted || isToken != tc.isToken {
			t.Errorf("ParseApprovalToken(%q) = (%v, %v), want (%v, %v)",
				tc.input, granted, isToken, tc.granted, tc.isToken)
		}
	}
}

func TestPlanTurnGrammar(t *testing.T) {
	st := &State{UserInput: "read /docs/readme.md"}
	planTurn(st)
	if st.Plan == nil || st.Plan.Tool != "read_file" {
		t.Fatalf("expected read_file plan, got %+v", st.Plan)
	}
	if st.Plan.Args["path"] != "/docs/readme.md" {
		t.Errorf("unexpected path: %v", st.Plan.Args["path"])
	}

	st = &State{UserInput: "DELETE /Configs/App.yaml"}
	planTurn(st)
	if st.Plan == nil || st.Plan.Tool != "delete_file" {
		t.Fatalf("expected delete_file plan, got %+v", st.Plan)
	}
	if st.Plan.Args["path"] != "/Configs/App.yaml" {
		t.Errorf("argument case should be preserved, got %v", st.Plan.Args["path"])
	}

	st = &State{UserInput: "get user:123"}
	planTurn(st)
	if st.Plan == nil || st.Plan.Tool != "get_record" {
		t.Fatalf("expected get_record plan, got %+v", st.Plan)
	}

	st = &State{UserInput: "what is going on"}
	planTurn(st)
	if st.Plan == nil || st.Plan.Tool != "search_files" {
		t.Fatalf("expected search_files fallback, got %+v", st.Plan)
	}
	if st.Plan.Recovery {
		t.Error("fallback search must not be marked as recovery")
	}
}

func TestPlanTurnUpdate(t *testing.T) {
	st := &State{UserInput: "update user:123 plan=free"}
	planTurn(st)
	if st.Plan == nil || st.Plan.Tool != "update_record" {
		t.Fatalf("expected update_record plan, got %+v", st.Plan)
	}
	patch, ok := st.Plan.Args["patch"].(map[string]any)
	if !ok || patch["plan"] != "free" {
		t.Errorf("unexpected patch: %v", st.Plan.Args["patch"])
	}

	st = &State{UserInput: "update user:123"}
	planTurn(st)
	if st.Plan != nil {
		t.Fatal("ambiguous update should not produce a plan")
	}
	if !strings.Contains(st.FinalAnswer, "Ambiguous update request.") {
		t.Errorf("unexpected answer: %q", st.FinalAnswer)
	}

	st = &State{UserInput: "update user:123 planfree"}
	planTurn(st)
	if st.Plan != nil {
		t.Fatal("malformed update should not produce a plan")
	}
	if !strings.Contains(st.FinalAnswer, "Invalid update format.") {
		t.Errorf("unexpected answer: %q", st.FinalAnswer)
	}
}

func TestPlanTurnTokenKeepsPlan(t *testing.T) {
	existing := &Plan{Tool: "delete_file", Args: map[string]any{"path": "/x"}}
	st := &State{UserInput: "APPROVE", Plan: existing}
	planTurn(st)
	if st.Plan != existing {
		t.Error("approval token must leave the pending plan untouched")
	}
}

func TestFormatAudit(t *testing.T) {
	audit := []AuditEntry{
		{Tool: "read_file", Args: map[string]any{"path": "/x"}, Error: "file not found: /x"},
		{Reflection: "read_file failed; trying search_files for 'x'"},
		{Tool: "search_files", Args: map[string]any{"query": "x"}, OK: true, Result: []string{}},
	}
	out := FormatAudit(audit)
	if !strings.Contains(out, `"error":"file not found: /x"`) {
		t.Errorf("missing failure entry: %s", out)
	}
	if !strings.Contains(out, `"reflection":"read_file failed; trying search_files for 'x'"`) {
		t.Errorf("missing reflection entry: %s", out)
	}
	if !strings.Contains(out, `"result":[]`) {
		t.Errorf("missing success entry: %s", out)
	}
	if strings.Index(out, "error") > strings.Index(out, "reflection") {
		t.Error("audit entries must keep insertion order")
	}
}
