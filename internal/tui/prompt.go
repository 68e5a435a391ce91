package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question and returns the answer.
func Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return ok, nil
}
