// internal/hygiene/secret.go
//
// 敏感資料（session id、候選 PIN）的記憶體清除工具。

package hygiene

import "runtime"

// Wipe 以零覆寫 buf。runtime.KeepAlive 確保寫入不會被編譯器當成無用程式碼移除。
func Wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

// Secret 包裝一段敏感位元組；Wipe 之後內容歸零且不可再取回。
// 零值即為已清除狀態。
type Secret struct {
	b []byte
}

// NewSecret 複製 b 建立 Secret，呼叫端可自行清除原始 b。
func NewSecret(b []byte) *Secret {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Secret{b: cp}
}

// Reveal 回傳明文複本；已清除則回傳空字串。
func (s *Secret) Reveal() string {
	if s == nil {
		return ""
	}
	return string(s.b)
}

// Empty 回報 Secret 是否已無內容。
func (s *Secret) Empty() bool {
	return s == nil || len(s.b) == 0
}

// Wipe 覆寫底層儲存並釋放參照。
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	Wipe(s.b)
	s.b = nil
}

// String 避免 Secret 透過 fmt / log 外洩。
func (s *Secret) String() string {
	return "[REDACTED]"
}
