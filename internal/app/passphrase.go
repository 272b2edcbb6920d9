package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PassphraseFunc supplies the passphrase for the age private key. It is only
// called when remote payloads are sealed.
type PassphraseFunc func() (string, error)

// ErrNoPassphrase is returned when no passphrase is set and there is no
// terminal to prompt on.
var ErrNoPassphrase = errors.New("passphrase required: set NTS_PASSPHRASE or run from a terminal")

// EnvOrPrompt returns a PassphraseFunc that reads NTS_PASSPHRASE, falling
// back to a hidden prompt on the controlling terminal.
func EnvOrPrompt(prompt string) PassphraseFunc {
	return func() (string, error) {
		if p := os.Getenv("NTS_PASSPHRASE"); p != "" {
			return p, nil
		}
		return readPassword(os.Stdin, os.Stderr, prompt)
	}
}

// NewPassphrase prompts twice for a new passphrase and requires both entries
// to match. NTS_PASSPHRASE is used as-is when set.
func NewPassphrase() (string, error) {
	if p := os.Getenv("NTS_PASSPHRASE"); p != "" {
		return p, nil
	}
	first, err := readPassword(os.Stdin, os.Stderr, "New passphrase: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New("passphrase must not be empty")
	}
	second, err := readPassword(os.Stdin, os.Stderr, "Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passphrases do not match")
	}
	return first, nil
}

func readPassword(in *os.File, out io.Writer, prompt string) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoPassphrase
	}
	fmt.Fprint(out, prompt)
	p, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(p), nil
}
