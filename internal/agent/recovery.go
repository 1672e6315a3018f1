package agent

import (
	"fmt"
	"strings"
)

// reflectRetry inspects the last failure and either schedules a recovery
// plan or ends the command. The retry count bounds how many recovery plans
// a single command may schedule.
func (c *Controller) reflectRetry(st *State) {
	if st.Retries >= c.maxRetries {
		st.setFinalAnswer(fmt.Sprintf(
			"Tool failure recovery attempted, but I still could not complete the request.\nLast error: %s\nAUDIT: %s",
			st.LastErr, FormatAudit(st.Audit)))
		return
	}

	if st.LastTool == "read_file" && strings.Contains(strings.ToLower(st.LastErr), "not found") {
		path, _ := st.LastArgs["path"].(string)
		filename := path[strings.LastIndexByte(path, '/')+1:]

		note := fmt.Sprintf("read_file failed; trying search_files for '%s'", filename)
		entry := AuditEntry{Reflection: note}
		st.appendAudit(entry)
		c.recordAudit(st, entry)

		st.Plan = &Plan{
			Tool:     "search_files",
			Args:     map[string]any{"query": filename},
			Recovery: true,
		}
		st.Retries++
		return
	}

	st.setFinalAnswer(fmt.Sprintf(
		"Tool failed with no recovery strategy: %s\nAUDIT: %s",
		st.LastErr, FormatAudit(st.Audit)))
}
