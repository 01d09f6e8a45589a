package output

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/pbaille/mdpress/internal/domain"
)

// CLIError is a structured error with user-facing context
type CLIError struct {
	Summary    string
	Suggestion string
}

// Error implements the error interface, returning the summary
func (e *CLIError) Error() string {
	return e.Summary
}

// Describe turns a workflow error into a CLIError with a hint for the user
func Describe(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	e := &CLIError{Summary: err.Error()}
	var unresolved *domain.UnresolvedTermError
	switch {
	case errors.As(err, &unresolved):
		e.Suggestion = "create it first: mdpress new term " + unresolved.Taxonomy + " <slug> [name]"
	case errors.Is(err, domain.ErrNoTerms):
		e.Suggestion = "add a category or tags line to the article header"
	case errors.Is(err, domain.ErrCredential):
		e.Suggestion = "check site.user / site.password or pass --user and --password"
	case errors.Is(err, domain.ErrConfig):
		e.Suggestion = "check .mdpress.yaml or the --site flag"
	case errors.Is(err, domain.ErrMetadata):
		e.Suggestion = "required header keys: title, postid, nicename, slug, date, author"
	case errors.Is(err, domain.ErrCollision):
		e.Suggestion = "use 'mdpress update term' to change an existing term"
	case errors.Is(err, domain.ErrUnsupported):
		e.Suggestion = "run 'mdpress --help' for the supported commands"
	}
	return e
}

// Report prints err and its suggestion to stderr
func (p *Printer) Report(err error) {
	e := Describe(err)
	p.Error("%s", e.Summary)
	if e.Suggestion == "" {
		return
	}
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
	} else {
		fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
	}
}
