// internal/audit/model.go
//
// 定義稽核快照的結構模型。
// 快照只做匯出（供人工檢視或外部系統收集），終端機啟動時不會由此還原狀態。

package audit

import (
	"time"

	"secureatm/internal/bank"
)

// Meta 為稽核快照的中繼資料。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_audit"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 快照建立時間
	Note      string    `json:"note,omitempty"` // 備註欄
}

// Snapshot 為一次完整的稽核匯出。
type Snapshot struct {
	Meta       Meta             `json:"_meta"`
	Events     []Event          `json:"events"`
	Statements []bank.Statement `json:"statements"`
}
