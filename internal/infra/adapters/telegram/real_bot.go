package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ecpay-checkout-bot/internal/application"
	"ecpay-checkout-bot/internal/config"
	"ecpay-checkout-bot/internal/infra/logging"
	"ecpay-checkout-bot/internal/infra/metrics"
	red "ecpay-checkout-bot/internal/infra/redis"
)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to
// BotFacade. Payment commands are gated by the configured allow list; the
// owner is always allowed.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	allowedIDs    map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	allowed := map[int64]struct{}{}
	for _, id := range cfg.AllowedIDs {
		allowed[id] = struct{}{}
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		log:           logger,
		allowedIDs:    allowed,
		updateWorkers: workers,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) isOwner(userID int64) bool {
	return r.cfg.OwnerID != 0 && userID == r.cfg.OwnerID
}

// isAllowed gates payment commands: the owner always passes; otherwise the
// user must be on the allow list.
func (r *RealTelegramBotAdapter) isAllowed(userID int64) bool {
	if r.isOwner(userID) {
		return true
	}
	_, ok := r.allowedIDs[userID]
	return ok
}

func (r *RealTelegramBotAdapter) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) sendDocument(chatID int64, text string, doc []byte, filename string) error {
	file := tgbotapi.FileBytes{Name: filename, Bytes: doc}
	msg := tgbotapi.NewDocument(chatID, file)
	msg.Caption = text
	if _, err := r.bot.Send(msg); err != nil {
		// Telegram caps captions at 1024 runes; fall back to separate
		// message + bare attachment.
		if sendErr := r.sendText(chatID, text); sendErr != nil {
			return sendErr
		}
		bare := tgbotapi.NewDocument(chatID, file)
		_, err = r.bot.Send(bare)
		return err
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	msg := update.Message
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !msg.IsCommand() {
		return nil
	}
	command := msg.Command()
	args := strings.Fields(msg.CommandArguments())

	metrics.IncBotCommand(command)
	ctx = logging.WithTgID(ctx, userID)
	logger := logging.With(ctx, r.log).With().Str("command", command).Logger()

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, command), 20, time.Minute)
		if err != nil {
			logger.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.sendText(chatID, "⏳ 操作太頻繁，請稍後再試。")
		}
	}

	switch command {
	case "start", "help":
		return r.sendText(chatID, r.facade.HandleHelp(r.isOwner(userID)))

	case "pay":
		if !r.isAllowed(userID) {
			metrics.IncUnauthorized(command)
			logger.Warn().Msg("unauthorized payment command")
			return r.sendText(chatID, "❌ 您沒有權限使用此指令！")
		}
		req, err := parsePayArgs(args)
		if err != nil {
			return r.sendText(chatID, "❌ "+err.Error())
		}
		reply, err := r.facade.HandleCreatePayment(ctx, req)
		if err != nil {
			return r.sendText(chatID, application.FormatError(err))
		}
		return r.sendDocument(chatID, reply.Text, reply.Document, reply.Filename)

	case "status":
		if !r.isAllowed(userID) {
			metrics.IncUnauthorized(command)
			return r.sendText(chatID, "❌ 您沒有權限使用此指令！")
		}
		if len(args) < 1 {
			return r.sendText(chatID, "用法: /status <交易編號>")
		}
		text, err := r.facade.HandleStatus(ctx, args[0])
		if err != nil {
			return r.sendText(chatID, "❌ 查詢失敗，請稍後再試！")
		}
		return r.sendText(chatID, text)

	case "botinfo":
		return r.sendText(chatID, r.facade.HandleBotInfo())

	case "sysinfo":
		if !r.isOwner(userID) {
			metrics.IncUnauthorized(command)
			return r.sendText(chatID, "❌ 此指令僅限機器人擁有者使用！")
		}
		return r.sendText(chatID, r.facade.HandleSysInfo())

	default:
		return r.sendText(chatID, "未知的指令，輸入 /help 查看可用指令。")
	}
}
