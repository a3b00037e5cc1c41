package bank

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID 產生 32 個十六進位字元的隨機識別碼，session id 與交易 id 共用。
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
