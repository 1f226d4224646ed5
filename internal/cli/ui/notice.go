package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a notice
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelSuccess
)

var levelLabels = map[Level]string{
	LevelError:   "error",
	LevelWarning: "warning",
	LevelInfo:    "info",
	LevelSuccess: "ok",
}

var levelColors = map[Level]color.Attribute{
	LevelError:   color.FgRed,
	LevelWarning: color.FgYellow,
	LevelInfo:    color.FgCyan,
	LevelSuccess: color.FgGreen,
}

// Notice is a message for the terminal. It renders as a labelled headline
// followed by indented detail lines, near-miss names and follow-up commands:
//
//	error: Cannot find resource class 'Bok'.
//	  Only classes declared under a resources key can be resolved.
//	  Did you mean: Book?
//	  Run: resourcemeta resources
type Notice struct {
	Level       Level
	Message     string
	Details     []string
	Suggestions []string
	Commands    []string
}

// Render formats the notice, without colors when noColor is set
func (n Notice) Render(noColor bool) string {
	label := color.New(levelColors[n.Level], color.Bold)
	accent := color.New(levelColors[n.Level])
	hint := color.New(color.FgCyan)
	if noColor {
		label.DisableColor()
		accent.DisableColor()
		hint.DisableColor()
	}

	var b strings.Builder
	label.Fprintf(&b, "%s:", levelLabels[n.Level])
	b.WriteByte(' ')
	accent.Fprintln(&b, n.Message)

	for _, detail := range n.Details {
		fmt.Fprintf(&b, "  %s\n", detail)
	}
	if len(n.Suggestions) > 0 {
		fmt.Fprintf(&b, "  Did you mean: %s?\n", strings.Join(n.Suggestions, ", "))
	}
	for _, command := range n.Commands {
		hint.Fprintf(&b, "  Run: %s\n", command)
	}
	return b.String()
}

// Write renders the notice to w
func (n Notice) Write(w io.Writer, noColor bool) {
	fmt.Fprint(w, n.Render(noColor))
}

// Success reports a completed command
func Success(message string) Notice {
	return Notice{Level: LevelSuccess, Message: message}
}

func Warning(message string) Notice {
	return Notice{Level: LevelWarning, Message: message}
}

func Info(message string) Notice {
	return Notice{Level: LevelInfo, Message: message}
}

// ClassNotFound reports a class that has no resource declaration
func ClassNotFound(class string, suggestions []string) Notice {
	return Notice{
		Level:       LevelError,
		Message:     fmt.Sprintf("Cannot find resource class '%s'.", class),
		Details:     []string{"Only classes declared under a resources key can be resolved."},
		Suggestions: suggestions,
		Commands:    []string{"resourcemeta resources"},
	}
}

// OperationNotFound reports an operation name or kind unknown to a class
func OperationNotFound(class, operation string, suggestions []string) Notice {
	return Notice{
		Level:       LevelError,
		Message:     fmt.Sprintf("Resource '%s' has no operation '%s'.", class, operation),
		Suggestions: suggestions,
		Commands:    []string{"resourcemeta resolve " + class},
	}
}

// CatalogFailure reports a database catalog that could not be opened or probed
func CatalogFailure(err error) Notice {
	return Notice{
		Level:    LevelError,
		Message:  fmt.Sprintf("Cannot read the database catalog: %v.", err),
		Details:  []string{"Set database.url in resourcemeta.yaml or the DATABASE_URL variable."},
		Commands: []string{"resourcemeta catalog --help"},
	}
}

// Rejected reports the parameters of an operation that failed validation
func Rejected(operation string, violations int) Notice {
	return Notice{
		Level:   LevelError,
		Message: fmt.Sprintf("%d violation(s) on %s.", violations, operation),
	}
}
