package patchset

import "strings"

// Result is the tagged outcome of a validate, dry-run, or apply phase.
// On failure FilesModified is empty; the errors list distinguishes the
// original failure from any secondary rollback failures.
type Result struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Errors        []string          `json:"errors,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
	Diffs         map[string]string `json:"diffs,omitempty"`
	FilesModified []string          `json:"files_modified,omitempty"`
}

// String renders a human-readable report.
func (r Result) String() string {
	lines := []string{r.Message}
	if len(r.Errors) > 0 {
		lines = append(lines, "", "Errors:")
		for _, e := range r.Errors {
			lines = append(lines, "  - "+e)
		}
	}
	if len(r.Warnings) > 0 {
		lines = append(lines, "", "Warnings:")
		for _, w := range r.Warnings {
			lines = append(lines, "  - "+w)
		}
	}
	if len(r.FilesModified) > 0 {
		lines = append(lines, "", "Files modified: "+strings.Join(r.FilesModified, ", "))
	}
	return strings.Join(lines, "\n")
}

func failure(message string, errs, warnings []string) Result {
	return Result{Success: false, Message: message, Errors: errs, Warnings: warnings}
}
