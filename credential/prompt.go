// SPDX-License-Identifier: GPL-3.0-or-later
package credential

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompter asks for passwords on the terminal.
type Prompter struct{}

func (Prompter) PromptPassword(sourceId, user string) (string, error) {
	var password string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Password for %s", user)).
				Description(fmt.Sprintf("Mail source %s", sourceId)).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if len(s) == 0 {
						return fmt.Errorf("password cannot be empty")
					}
					return nil
				}).
				Value(&password),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}

	return password, nil
}
