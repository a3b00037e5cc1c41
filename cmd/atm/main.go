// cmd/atm/main.go

// 安全 ATM 終端機的進入點：載入 .env 後交給 cobra 指令處理。
package main

import (
	"github.com/joho/godotenv"

	"secureatm/cmd/atm/app"
)

func main() {
	// .env 僅供本機開發；正式環境直接設定 ATM_* 環境變數
	_ = godotenv.Load()
	app.Execute()
}
