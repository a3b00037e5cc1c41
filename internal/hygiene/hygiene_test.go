package hygiene

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFormatPIN(t *testing.T) {
	cases := map[string]bool{
		"1234":  true,
		"0000":  true,
		"123":   false,
		"12345": false,
		"12a4":  false,
		"":      false,
		" 123":  false,
		"１２３４": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, ValidateFormat(in, KindPIN), "input %q", in)
	}
}

func TestValidateFormatAccountNumber(t *testing.T) {
	assert.True(t, ValidateFormat("ACC-1001", KindAccountNumber))
	assert.False(t, ValidateFormat("", KindAccountNumber))
	assert.False(t, ValidateFormat("ACC 1001", KindAccountNumber))
	assert.False(t, ValidateFormat("ACC-1001;DROP", KindAccountNumber))
	assert.False(t, ValidateFormat("12345678901234567890", KindAccountNumber))
}

func TestValidateFormatNameAndAmount(t *testing.T) {
	assert.True(t, ValidateFormat("John Doe", KindName))
	assert.False(t, ValidateFormat("   ", KindName))
	assert.False(t, ValidateFormat("John <script>", KindName))

	assert.True(t, ValidateFormat("500", KindAmount))
	assert.True(t, ValidateFormat("500.01", KindAmount))
	assert.False(t, ValidateFormat("500.011", KindAmount))
	assert.False(t, ValidateFormat("-5", KindAmount))
	assert.False(t, ValidateFormat("1e3", KindAmount))
}

func TestValidateFormatUnknownKind(t *testing.T) {
	assert.False(t, ValidateFormat("1234", Kind(99)))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Pay John-Doe99.", Sanitize("Pay$ John-Doe#99."))
	assert.Equal(t, "", Sanitize("$#@!"))
	assert.Equal(t, "Transfer of 10.00 to account ACC-2", Sanitize("Transfer of $10.00 to account ACC-2"))
	assert.Equal(t, "abc", Sanitize("a\nb\tc"))
}

func TestWipe(t *testing.T) {
	buf := []byte("secret")
	Wipe(buf)
	assert.Equal(t, make([]byte, 6), buf)
}

func TestSecret(t *testing.T) {
	src := []byte("deadbeef")
	s := NewSecret(src)
	Wipe(src)

	assert.Equal(t, "deadbeef", s.Reveal())
	assert.Equal(t, "[REDACTED]", fmt.Sprint(s))

	s.Wipe()
	assert.True(t, s.Empty())
	assert.Equal(t, "", s.Reveal())

	var nilSecret *Secret
	nilSecret.Wipe()
	assert.True(t, nilSecret.Empty())
}
