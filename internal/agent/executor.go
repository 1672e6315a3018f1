package agent

import (
	"context"
	"fmt"
	"strings"
)

// executeTool runs the planned tool through the registry and records the
// attempt on the audit trail. Every attempt produces exactly one entry,
// success or failure.
func (c *Controller) executeTool(ctx context.Context, st *State) {
	plan := st.Plan
	st.LastTool = plan.Tool
	st.LastArgs = plan.Args

	val, err := c.registry.Invoke(ctx, plan.Tool, plan.Args)
	if err != nil {
		st.LastErr = err.Error()
		st.LastResult = nil
		entry := AuditEntry{Tool: plan.Tool, Args: plan.Args, Error: err.Error()}
		st.appendAudit(entry)
		c.recordAudit(st, entry)
		return
	}

	st.LastErr = ""
	st.LastResult = val
	entry := AuditEntry{Tool: plan.Tool, Args: plan.Args, OK: true, Result: val}
	st.appendAudit(entry)
	c.recordAudit(st, entry)

	// A recovery search that comes back empty means the fallback went
	// nowhere. End the command with the attempt chain instead of an OK
	// wrapping an empty list.
	if plan.Recovery && plan.Tool == "search_files" {
		if matches, ok := val.([]string); ok && len(matches) == 0 {
			st.setFinalAnswer(recoverySummary(st))
		}
	}
}

// recoverySummary narrates every tool attempt of the command in order and
// states that no alternative was found.
func recoverySummary(st *State) string {
	var sb strings.Builder
	sb.WriteString("Recovered gracefully from a tool failure:\n")

	n := 0
	for _, e := range st.Audit {
		if e.Reflection != "" {
			continue
		}
		n++
		outcome := "ok"
		if !e.OK {
			outcome = e.Error
		} else if matches, isList := e.Result.([]string); isList && len(matches) == 0 {
			outcome = "no matches"
		}
		fmt.Fprintf(&sb, "%d) Tried %s(%s) -> %s\n", n, e.Tool, formatArgs(e.Args), outcome)
	}

	sb.WriteString("Outcome: I could not find an alternative file to read.\n")
	sb.WriteString("AUDIT: " + FormatAudit(st.Audit))
	return sb.String()
}
