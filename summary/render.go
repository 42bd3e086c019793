package summary

import (
	"fmt"
	"sort"
	"strings"
)

// Render formats a record as plain text for operators (CLI output, email
// bodies, Slack pastes).
func Render(rec *Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Call Summary - %s\n", rec.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Session: %s\n\n", rec.SessionID)

	b.WriteString("Contact Information:\n")
	if len(rec.Contact) == 0 {
		b.WriteString("- (none captured)\n")
	} else {
		for _, field := range sortedKeys(rec.Contact) {
			fmt.Fprintf(&b, "- %s: %s\n", field, rec.Contact[field])
		}
	}

	b.WriteString("\nCall Details:\n")
	fmt.Fprintf(&b, "- Topics Discussed: %s\n", orNA(strings.Join(rec.Topics, ", ")))
	fmt.Fprintf(&b, "- Outcome: %s\n", rec.Outcome)
	fmt.Fprintf(&b, "- Lead: %d/%d (%s priority, qualified: %v)\n",
		rec.Lead.Score, rec.Lead.MaxScore, rec.Lead.Priority, rec.Lead.Qualified)

	if len(rec.Answers) > 0 {
		b.WriteString("\nQualification Answers:\n")
		for _, key := range sortedKeys(rec.Answers) {
			fmt.Fprintf(&b, "- %s: %s\n", key, rec.Answers[key])
		}
	}

	fmt.Fprintf(&b, "\nNotes: %s\n", orNA(rec.Notes))

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
