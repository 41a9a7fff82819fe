package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"cuesplice/internal/services"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	dimTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		return statusKindStyle(kind).Render(base)
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindStyle(kind statusKind) lipgloss.Style {
	switch kind {
	case statusOK:
		return okStyle
	case statusWarn:
		return warnStyle
	case statusError:
		return errorStyle
	default:
		return infoStyle
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = headerStyle.Render(line)
		rule = headerStyle.Render(rule)
	}
	return []string{line, rule}
}

// renderError formats a command failure with its class and any captured
// tool output.
func renderError(err error, colorize bool) string {
	msg := "error: " + err.Error()
	var b strings.Builder
	if colorize {
		b.WriteString(errorStyle.Render(msg))
	} else {
		b.WriteString(msg)
	}
	if class := services.Classify(err); class != services.ClassFailure {
		hint := fmt.Sprintf("(%s, exit %d)", class, services.ExitCode(err))
		b.WriteString("\n  ")
		if colorize {
			hint = dimTextStyle.Render(hint)
		}
		b.WriteString(hint)
	}
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
