package application

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"ecpay-checkout-bot/internal/config"
	"ecpay-checkout-bot/internal/domain"
	"ecpay-checkout-bot/internal/domain/model"
	"ecpay-checkout-bot/internal/usecase"
)

const botVersion = "1.2.0"

// BotFacade composes usecases into high-level bot commands.
// Methods return ready-to-send texts (and, for payments, the checkout
// document) so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	PayUC usecase.PaymentUseCase

	cfg       *config.ECPayConfig
	startTime time.Time
}

func NewBotFacade(payUC usecase.PaymentUseCase, ecpayCfg *config.ECPayConfig) *BotFacade {
	return &BotFacade{
		PayUC:     payUC,
		cfg:       ecpayCfg,
		startTime: time.Now(),
	}
}

// PaymentReply is the full response to a /pay command: the chat message and
// the checkout document to attach as a file.
type PaymentReply struct {
	Text     string
	Document []byte
	Filename string
}

// HandleCreatePayment issues a checkout request and formats the reply.
func (b *BotFacade) HandleCreatePayment(ctx context.Context, req usecase.IssueRequest) (*PaymentReply, error) {
	if b.PayUC == nil {
		return nil, fmt.Errorf("payment usecase not available")
	}
	res, err := b.PayUC.Issue(ctx, req)
	if err != nil {
		return nil, err
	}
	return &PaymentReply{
		Text:     formatOrderInfo(res.Info),
		Document: res.FormHTML,
		Filename: fmt.Sprintf("ecpay_payment_%s.html", res.Info.TradeNo),
	}, nil
}

// HandleStatus answers a trade-number status query. There is no order store,
// so the reply points at the merchant backend.
func (b *BotFacade) HandleStatus(ctx context.Context, tradeNo string) (string, error) {
	tradeNo = strings.TrimSpace(tradeNo)
	if tradeNo == "" {
		return "", fmt.Errorf("empty trade number")
	}
	var sb strings.Builder
	sb.WriteString("🔍 付款狀態查詢\n\n")
	sb.WriteString(fmt.Sprintf("交易編號: %s\n\n", tradeNo))
	sb.WriteString("請至ECPay後台查詢詳細付款狀態，或聯繫客服確認繳費情況。")
	return sb.String(), nil
}

// HandleHelp returns the command listing. Owner-only commands show up only
// when the asking user is the owner.
func (b *BotFacade) HandleHelp(isOwner bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🤖 ECPay Checkout Bot v%s\n\n", botVersion))
	sb.WriteString("💳 繳費相關指令\n")
	sb.WriteString("/pay <金額> <說明> [商品名稱] [超商|付款方式] - 建立繳費單\n")
	sb.WriteString("/status <交易編號> - 查詢付款狀態\n\n")
	sb.WriteString("ℹ️ 資訊指令\n")
	sb.WriteString("/help - 顯示此說明\n")
	sb.WriteString("/botinfo - 查看機器人詳細資訊\n")
	if isOwner {
		sb.WriteString("\n🔧 管理指令（僅擁有者）\n")
		sb.WriteString("/sysinfo - 查看伺服器系統狀況\n")
	}
	sb.WriteString("\n🏪 支援超商: 全通用 / 7-ELEVEN (ibon) / 全家 / 萊爾富 / OK\n")
	sb.WriteString("💰 付款限制: 超商 NT$1-20,000，繳費期限預設 ")
	sb.WriteString(fmt.Sprintf("%d 天", b.expireDays()))
	return sb.String()
}

// HandleBotInfo reports version, uptime and the active gateway environment.
func (b *BotFacade) HandleBotInfo() string {
	env := "正式環境"
	if b.cfg != nil && b.cfg.Sandbox {
		env = "測試環境"
	}
	merchant := "N/A"
	if b.cfg != nil && b.cfg.MerchantID != "" {
		merchant = b.cfg.MerchantID
	}

	var sb strings.Builder
	sb.WriteString("🤖 機器人資訊\n\n")
	sb.WriteString(fmt.Sprintf("版本: %s\n", botVersion))
	sb.WriteString(fmt.Sprintf("運行時間: %s\n", formatUptime(time.Since(b.startTime))))
	sb.WriteString(fmt.Sprintf("Go版本: %s\n", runtime.Version()))
	sb.WriteString(fmt.Sprintf("作業系統: %s/%s\n\n", runtime.GOOS, runtime.GOARCH))
	sb.WriteString("💳 ECPay設定\n")
	sb.WriteString(fmt.Sprintf("環境: %s\n", env))
	sb.WriteString(fmt.Sprintf("商店代號: %s\n", merchant))
	sb.WriteString(fmt.Sprintf("繳費期限: %d天", b.expireDays()))
	return sb.String()
}

// HandleSysInfo reports process-level runtime stats. The adapter restricts
// this command to the bot owner.
func (b *BotFacade) HandleSysInfo() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var sb strings.Builder
	sb.WriteString("🖥️ 系統狀況監控\n\n")
	sb.WriteString(fmt.Sprintf("運行時間: %s\n", formatUptime(time.Since(b.startTime))))
	sb.WriteString(fmt.Sprintf("Goroutines: %d\n", runtime.NumGoroutine()))
	sb.WriteString(fmt.Sprintf("CPU核心數: %d\n\n", runtime.NumCPU()))
	sb.WriteString("🤖 Bot程序\n")
	sb.WriteString(fmt.Sprintf("記憶體使用: %s\n", formatBytes(m.Alloc)))
	sb.WriteString(fmt.Sprintf("系統保留: %s\n", formatBytes(m.Sys)))
	sb.WriteString(fmt.Sprintf("GC次數: %d", m.NumGC))
	return sb.String()
}

// FormatError turns a checkout error into a user-facing Chinese message.
func FormatError(err error) string {
	var amountErr *domain.InvalidAmountError
	switch {
	case errors.As(err, &amountErr):
		return fmt.Sprintf("❌ 金額超出限制！%s 的金額必須介於 1 ~ %d 元。", amountErr.Method, amountErr.Limit)
	case errors.Is(err, domain.ErrMissingRequiredOption):
		return "❌ 缺少必要參數，請檢查超商或分期選項！"
	case errors.Is(err, domain.ErrUnsupportedMethod):
		return "❌ 不支援的付款方式！"
	default:
		return "❌ 建立付款單時發生錯誤，請稍後再試！"
	}
}

func (b *BotFacade) expireDays() int {
	if b.cfg != nil && b.cfg.ExpireDays > 0 {
		return b.cfg.ExpireDays
	}
	return 7
}

func formatOrderInfo(info model.OrderInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ 繳費單已建立完成！ - %s\n\n", info.MethodSpec.Display))

	switch info.Method {
	case model.MethodCVS:
		switch info.StoreType {
		case model.StoreAll:
			sb.WriteString(fmt.Sprintf("🏪 ibon機台繳費代碼（7-ELEVEN）\n%s\n\n", info.MachineCode))
			sb.WriteString(fmt.Sprintf("🔢 其他超商繳費代碼\n%s\n\n", info.PaymentCode))
		case model.StoreSeven:
			sb.WriteString(fmt.Sprintf("🏪 ibon機台繳費代碼\n%s\n\n", info.MachineCode))
		default:
			sb.WriteString(fmt.Sprintf("🔢 超商繳費代碼\n%s\n\n", info.PaymentCode))
		}
	case model.MethodBarcode:
		sb.WriteString("📊 繳費條碼\n")
		for _, bc := range info.Barcodes {
			sb.WriteString(bc)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	case model.MethodATM:
		sb.WriteString(fmt.Sprintf("🏦 銀行代碼: %s\n", info.BankCode))
		sb.WriteString(fmt.Sprintf("💳 虛擬帳號: %s\n\n", info.VirtualAccount))
	}

	sb.WriteString("📋 訂單資訊\n")
	sb.WriteString(fmt.Sprintf("🆔 訂單編號: %s\n", info.TradeNo))
	sb.WriteString(fmt.Sprintf("🛍️ 商品名稱: %s\n", info.ItemName))
	sb.WriteString(fmt.Sprintf("💰 交易金額: NT$ %d\n", info.Amount))
	if info.InstallmentPeriod > 0 {
		sb.WriteString(fmt.Sprintf("📆 分期期數: %d期\n", info.InstallmentPeriod))
	}
	sb.WriteString("\n⏰ 時間資訊\n")
	sb.WriteString(fmt.Sprintf("📅 訂單產生時間: %s\n", info.CreatedAt.Format("2006/01/02 15:04:05")))
	if !info.ExpiresAt.IsZero() {
		sb.WriteString(fmt.Sprintf("⏳ 訂單有效期限: %s\n", info.ExpireDate))
		sb.WriteString(fmt.Sprintf("❌ 訂單失效時間: %s\n", info.ExpiresAt.Format("2006/01/02 15:04:05")))
	}
	sb.WriteString("\n⚠️ 請在期限內完成繳費，繳費代碼僅能使用一次。附件為備用的結帳頁面。")
	return sb.String()
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%d天 %d小時 %d分鐘", days, hours, minutes)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTP"[exp])
}
