package agent

import "strings"

const (
	ambiguousUpdateMsg = "Ambiguous update request.\n" +
		"I need the field and value to update.\n" +
		"Use: update <key> <field>=<value>\n" +
		"Example: update user:123 plan=free"

	invalidUpdateMsg = "Invalid update format.\n" +
		"Use: update <key> <field>=<value>\n" +
		"Example: update user:123 plan=free"
)

// ParseApprovalToken reports whether text is a bare APPROVE or DENY token
// (case-insensitive) and the decision it carries.
func ParseApprovalToken(text string) (granted bool, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "APPROVE":
		return true, true
	case "DENY":
		return false, true
	}
	return false, false
}

// planTurn maps the user input to a single tool plan, or to a terminal
// clarification message when the input cannot be planned. Approval tokens
// leave the existing plan untouched so the approval router can act on it.
func planTurn(st *State) {
	text := strings.TrimSpace(st.UserInput)
	if _, isToken := ParseApprovalToken(text); isToken {
		return
	}

	low := strings.ToLower(text)
	switch {
	case strings.HasPrefix(low, "read "):
		path := strings.TrimSpace(text[len("read "):])
		st.Plan = &Plan{Tool: "read_file", Args: map[string]any{"path": path}}
	case strings.HasPrefix(low, "delete "):
		path := strings.TrimSpace(text[len("delete "):])
		st.Plan = &Plan{Tool: "delete_file", Args: map[string]any{"path": path}}
	case strings.HasPrefix(low, "get "):
		key := strings.TrimSpace(text[len("get "):])
		st.Plan = &Plan{Tool: "get_record", Args: map[string]any{"key": key}}
	case strings.HasPrefix(low, "update "):
		planUpdate(st, text)
	default:
		st.Plan = &Plan{Tool: "search_files", Args: map[string]any{"query": text}}
	}
}

// planUpdate parses "update <key> <field>=<value>". A missing field=value
// part is ambiguous; a present part without "=" is malformed. Both end the
// turn with a usage message instead of a plan.
func planUpdate(st *State, text string) {
	parts := strings.SplitN(text, " ", 3)
	if len(parts) < 3 {
		st.setFinalAnswer(ambiguousUpdateMsg)
		return
	}
	key := strings.TrimSpace(parts[1])
	fieldValue := strings.TrimSpace(parts[2])
	if !strings.Contains(fieldValue, "=") {
		st.setFinalAnswer(invalidUpdateMsg)
		return
	}
	kv := strings.SplitN(fieldValue, "=", 2)
	st.Plan = &Plan{
		Tool: "update_record",
		Args: map[string]any{
			"key":   key,
			"patch": map[string]any{kv[0]: kv[1]},
		},
	}
}
