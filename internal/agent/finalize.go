package agent

import "fmt"

// finalizeTurn produces the terminal answer for the turn. Steps that already
// set a final answer (clarifications, denials, recovery summaries) win; the
// finalizer only fills in the default success and failure wrappings.
func finalizeTurn(st *State) {
	if st.FinalAnswer != "" {
		return
	}
	if st.LastErr != "" {
		st.FinalAnswer = fmt.Sprintf("FAILED: %s\nAUDIT: %s", st.LastErr, FormatAudit(st.Audit))
		return
	}
	st.FinalAnswer = fmt.Sprintf("OK: %s\nAUDIT: %s", formatValue(st.LastResult), FormatAudit(st.Audit))
}
