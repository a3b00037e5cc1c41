// internal/credential/credential.go

// Package credential 保存每個帳戶加鹽雜湊後的 PIN，並提供驗證。
// 明文 PIN 永遠不會被保存；失敗次數與鎖定策略不在本套件處理（由 session 負責）。
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"

	"secureatm/internal/bank"
	"secureatm/internal/hygiene"
)

const (
	// SaltLength 為每組憑證的隨機鹽長度。
	SaltLength = 16
	// DigestLength 為雜湊輸出長度；儲存空間與其完全相同。
	DigestLength = 32

	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

// SecurePIN 為單一帳戶的憑證：鹽 + 雜湊。
type SecurePIN struct {
	salt [SaltLength]byte
	hash [DigestLength]byte
}

// hashPIN 是唯一的 PIN 雜湊函式：Argon2id(pin, salt)。
func hashPIN(salt []byte, pin []byte) [DigestLength]byte {
	var out [DigestLength]byte
	key := argon2.IDKey(pin, salt, argonTime, argonMemory, argonThreads, DigestLength)
	copy(out[:], key)
	hygiene.Wipe(key)
	return out
}

// NewSecurePIN 產生新鹽並計算 pin 的雜湊。
func NewSecurePIN(pin string) (*SecurePIN, error) {
	if !hygiene.ValidateFormat(pin, hygiene.KindPIN) {
		return nil, fmt.Errorf("%w: pin must be exactly %d digits", bank.ErrInvalidInput, hygiene.PINLength)
	}
	p := &SecurePIN{}
	if _, err := rand.Read(p.salt[:]); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	raw := []byte(pin)
	p.hash = hashPIN(p.salt[:], raw)
	hygiene.Wipe(raw)
	return p, nil
}

// Matches 以常數時間比對 candidate 與已存雜湊。
func (p *SecurePIN) Matches(candidate string) bool {
	raw := []byte(candidate)
	sum := hashPIN(p.salt[:], raw)
	hygiene.Wipe(raw)
	ok := subtle.ConstantTimeCompare(sum[:], p.hash[:]) == 1
	hygiene.Wipe(sum[:])
	return ok && len(candidate) == hygiene.PINLength
}

// Wipe 清除鹽與雜湊。
func (p *SecurePIN) Wipe() {
	hygiene.Wipe(p.salt[:])
	hygiene.Wipe(p.hash[:])
}

// Store 以帳號為鍵保存憑證。
type Store struct {
	mu    sync.RWMutex
	creds map[string]*SecurePIN
}

// NewStore 建立空的憑證庫。
func NewStore() *Store {
	return &Store{creds: make(map[string]*SecurePIN)}
}

// Provision 為 account 建立（或取代）憑證；PIN 格式錯誤回傳 ErrInvalidInput。
func (s *Store) Provision(account, pin string) error {
	p, err := NewSecurePIN(pin)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.creds[account]; ok {
		old.Wipe()
	}
	s.creds[account] = p
	return nil
}

// Verify 回報 candidate 是否為 account 的 PIN；帳號沒有憑證時回傳 false。
// 帳號本身不是秘密（登入畫面會列出），因此不對未知帳號做等時處理。
func (s *Store) Verify(account, candidate string) bool {
	s.mu.RLock()
	p, ok := s.creds[account]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return p.Matches(candidate)
}

// Has 回報 account 是否已有憑證。
func (s *Store) Has(account string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.creds[account]
	return ok
}

// Forget 清除並移除 account 的憑證。
func (s *Store) Forget(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.creds[account]; ok {
		p.Wipe()
		delete(s.creds, account)
	}
}

// Wipe 清除所有憑證，用於程序結束。
func (s *Store) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.creds {
		p.Wipe()
		delete(s.creds, k)
	}
}
