package vcat

import "fmt"

// Prompter asks the user to confirm an action and reports the answer.
type Prompter func(question string) bool

// AlwaysConfirm is the prompter used by non-interactive callers.
func AlwaysConfirm(string) bool {
	return true
}

func (s *Session) confirm(operation, kind, path string) bool {
	question := fmt.Sprintf("OK to %s %s %s?", operation, kind, path)
	if s.prompt(question) {
		return true
	}

	s.log.Info("Skipping %s %s (declined)", kind, path)
	return false
}
