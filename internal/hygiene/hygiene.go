// internal/hygiene/hygiene.go

// Package hygiene 負責所有外部輸入的格式檢查與清理。
// 任何來自終端機的字串（PIN、帳號、備註文字）都必須先經過本套件，
// 才能進入 credential / bank / session 等核心模組。
package hygiene

import (
	"regexp"
	"strings"
)

// Kind 表示要檢查的輸入格式種類。
type Kind int

const (
	KindPIN Kind = iota
	KindAccountNumber
	KindName
	KindAmount
)

const (
	// PINLength 為 PIN 的固定長度。
	PINLength = 4
	// MaxAccountNumberLength 為帳號最大長度（不含結尾）。
	MaxAccountNumberLength = 19
	// MaxNameLength 為戶名最大長度（不含結尾）。
	MaxNameLength = 49
)

var (
	accountNumberPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	amountPattern        = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
)

func (k Kind) String() string {
	switch k {
	case KindPIN:
		return "PIN"
	case KindAccountNumber:
		return "ACCOUNT_NUMBER"
	case KindName:
		return "NAME"
	case KindAmount:
		return "AMOUNT"
	default:
		return "UNKNOWN"
	}
}

// ValidateFormat 檢查 input 是否符合 kind 指定的格式；未知種類一律回傳 false。
func ValidateFormat(input string, kind Kind) bool {
	switch kind {
	case KindPIN:
		if len(input) != PINLength {
			return false
		}
		for i := 0; i < len(input); i++ {
			if input[i] < '0' || input[i] > '9' {
				return false
			}
		}
		return true
	case KindAccountNumber:
		return len(input) <= MaxAccountNumberLength && accountNumberPattern.MatchString(input)
	case KindName:
		trimmed := strings.TrimSpace(input)
		return trimmed != "" && len(input) <= MaxNameLength && Sanitize(input) == input
	case KindAmount:
		return amountPattern.MatchString(input)
	}
	return false
}

// Sanitize 只保留英數字、空白、句點與連字號，其餘字元全部移除。
// 純函式：不修改輸入，回傳新字串。
func Sanitize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		if allowed(input[i]) {
			b.WriteByte(input[i])
		}
	}
	return b.String()
}

func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == ' ', c == '.', c == '-':
		return true
	}
	return false
}
