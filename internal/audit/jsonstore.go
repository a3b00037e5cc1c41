// internal/audit/jsonstore.go
//
// 稽核快照的 JSON 寫入與讀取。
// 採「原子寫入」策略：先寫入 .tmp 檔，再以 rename() 取代原檔，
// 避免中途失敗導致檔案損壞。檔案權限為 0600，內容含帳號與交易明細。

package audit

import (
	"encoding/json"
	"os"
	"time"
)

// LoadSnapshot 讀取指定路徑的 JSON 稽核快照。
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	err = json.NewDecoder(f).Decode(&snap)
	return snap, err
}

// SaveSnapshot 將 Snapshot 以原子方式寫入 path。
func SaveSnapshot(path string, snap Snapshot) error {
	snap.Meta.Storage = "json_audit"
	if snap.Meta.Version == 0 {
		snap.Meta.Version = 1
	}
	snap.Meta.Timestamp = time.Now()
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	// 縮排輸出，方便人工檢視
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
