// Package utils provides helpers shared by the CLI and the TUI.
package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// IsStandardStyle reports whether style names one of glamour's built-in
// styles.
func IsStandardStyle(style string) bool {
	_, ok := styles.DefaultStyles[style]
	return ok
}

// GlamourStyle returns a glamour.TermRendererOption based on the given style.
func GlamourStyle(style string) glamour.TermRendererOption {
	if style == styles.AutoStyle || IsStandardStyle(style) {
		return glamour.WithStandardStyle(style)
	}
	return glamour.WithStylePath(ExpandPath(style))
}

// ValidateStyle returns an error if style is neither a built-in style nor
// an existing JSON style file.
func ValidateStyle(style string) error {
	if style == styles.AutoStyle || IsStandardStyle(style) {
		return nil
	}
	_, err := os.Stat(filepath.Clean(ExpandPath(style)))
	return err
}
