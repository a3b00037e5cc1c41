package tui

import (
	"strings"

	"secureatm/internal/hygiene"
)

// Field limits for the inline inputs. Amounts allow "50000.00" plus slack so
// the terminal, not the keyboard, reports the out-of-range error.
const (
	maxAmountInput = 12
	maxTargetInput = hygiene.MaxAccountNumberLength
)

// editAmount accepts digits and a single decimal point.
func editAmount(text, key string) string {
	switch {
	case key == "backspace":
		return backspace(text)
	case len(text) >= maxAmountInput:
		return text
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		return text + key
	case key == "." && !strings.Contains(text, "."):
		return text + key
	}
	return text
}

// editTarget accepts the account number alphabet only.
func editTarget(text, key string) string {
	switch {
	case key == "backspace":
		return backspace(text)
	case len(text) >= maxTargetInput || len(key) != 1:
		return text
	case hygiene.ValidateFormat(key, hygiene.KindAccountNumber):
		return text + key
	}
	return text
}

// editPIN appends a digit to the PIN buffer in place. The buffer never
// reallocates, so wiping it clears every keystroke.
func editPIN(pin []byte, n int, key string) int {
	switch {
	case key == "backspace":
		if n > 0 {
			n--
			pin[n] = 0
		}
	case n < len(pin) && len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		pin[n] = key[0]
		n++
	}
	return n
}

func backspace(text string) string {
	if text == "" {
		return text
	}
	return text[:len(text)-1]
}

func maskPIN(n int) string {
	return strings.Repeat("•", n) + strings.Repeat("_", hygiene.PINLength-n)
}
