// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the AISL verifier CLI.
//
// Styled output is only produced when stdout is a terminal and NO_COLOR
// is unset; otherwise every helper degrades to plain text so piped
// output stays machine-friendly.
package ux

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders, accents
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	// Semantic colors
	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling.
func (i Icon) Render() string {
	if plainMode() {
		return string(i)
	}
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

var forcePlain bool

// SetPlain forces plain output regardless of terminal detection.
// Used by the --plain flag and by tests.
func SetPlain(plain bool) { forcePlain = plain }

func plainMode() bool {
	if forcePlain {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Title prints a styled title line.
func Title(text string) {
	if plainMode() {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with checkmark.
func Success(text string) {
	if plainMode() {
		fmt.Printf("OK: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning message.
func Warning(text string) {
	if plainMode() {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error message.
func Error(text string) {
	if plainMode() {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info prints an informational message.
func Info(text string) {
	if plainMode() {
		fmt.Println(text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints muted/secondary text.
func Muted(text string) {
	if plainMode() {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}

// SpecStatus prints one verification spec with its outcome.
func SpecStatus(target string, passed, total int, reason string) {
	icon := IconSuccess
	if passed < total {
		icon = IconError
	}
	if plainMode() {
		if reason != "" {
			fmt.Printf("%s\t%s\t%d/%d\t%s\n", string(icon), target, passed, total, reason)
		} else {
			fmt.Printf("%s\t%s\t%d/%d\n", string(icon), target, passed, total)
		}
		return
	}
	line := fmt.Sprintf("%s %s %s", icon.Render(), target,
		Styles.Muted.Render(fmt.Sprintf("%d/%d", passed, total)))
	if reason != "" {
		line += " " + Styles.Muted.Render("("+reason+")")
	}
	fmt.Println(line)
}

// Summary prints the run totals with duration.
func Summary(passed, failed, total int, elapsed time.Duration) {
	if plainMode() {
		fmt.Printf("SUMMARY: passed=%d failed=%d total=%d duration=%s\n",
			passed, failed, total, elapsed)
		return
	}
	fmt.Printf("\n%s %s  %s %s  %s %s  %s\n",
		Styles.Success.Render(fmt.Sprintf("%d", passed)), Styles.Muted.Render("passed"),
		Styles.Error.Render(fmt.Sprintf("%d", failed)), Styles.Muted.Render("failed"),
		Styles.Bold.Render(fmt.Sprintf("%d", total)), Styles.Muted.Render("total"),
		Styles.Muted.Render(elapsed.String()),
	)
}

// FailureBox prints a failed case with its expected and actual values.
func FailureBox(desc string, line int, expected, actual string) {
	if plainMode() {
		fmt.Printf("FAIL %s (line %d): expected %s, actual %s\n", desc, line, expected, actual)
		return
	}
	title := Styles.Error.Bold(true).Render(fmt.Sprintf("FAIL: %s (line %d)", desc, line))
	body := fmt.Sprintf("expected %s\nactual   %s",
		Styles.Bold.Render(expected), Styles.Bold.Render(actual))
	fmt.Println(Styles.ErrorBox.Render(title + "\n" + body))
}
