package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/zentra-ai/zentra_go_bot/config"
	"github.com/zentra-ai/zentra_go_bot/internal/pkg/pubsub"
	"github.com/zentra-ai/zentra_go_bot/internal/service"
)

// 管理员统计命令关键词，同时屏蔽普通用户把它发给 AI
const adminStatsKeyword = "zentra ai"

var arithmeticPattern = regexp.MustCompile(`^\s*(\d+)\s*\+\s*(\d+)\s*$`)

// AIProvider AI 问答出口，由 openai.Client 实现
type AIProvider interface {
	Ask(ctx context.Context, prompt string) (string, int, error)
}

type Bot struct {
	bot            *tele.Bot
	cfg            *config.Config
	entitlementSvc *service.EntitlementService
	ai             AIProvider
	startedAt      time.Time
}

func NewBot(
	cfg *config.Config,
	entitlementSvc *service.EntitlementService,
	ai AIProvider,
) (*Bot, error) {
	pref := tele.Settings{
		Token:     cfg.Telegram.BotToken,
		Poller:    &tele.LongPoller{Timeout: time.Duration(cfg.Telegram.PollTimeout) * time.Second},
		ParseMode: tele.ModeHTML,
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:            bot,
		cfg:            cfg,
		entitlementSvc: entitlementSvc,
		ai:             ai,
		startedAt:      time.Now(),
	}

	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/status", b.handleStatus)
	b.bot.Handle(tele.OnText, b.handleMessage)
}

// StartPolling 长轮询，ctx 取消时停止
func (b *Bot) StartPolling(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	b.bot.Start()
}

// HandlePaymentEvent 处理支付/到期事件并通知用户，由 pubsub 订阅回调触发
func (b *Bot) HandlePaymentEvent(event *pubsub.PaymentEvent) {
	recipient := &tele.User{ID: event.UserID}

	var text string
	switch event.Type {
	case pubsub.EventSubscriptionExpiring:
		text = expiringMessage()
	default:
		text = activatedMessage()
	}

	if _, err := b.bot.Send(recipient, text); err != nil {
		log.Printf("Failed to notify user %d: %v", event.UserID, err)
	}
}

func (b *Bot) handleStart(c tele.Context) error {
	if _, err := b.entitlementSvc.EnsureAccount(c.Sender().ID); err != nil {
		log.Printf("Failed to ensure account %d: %v", c.Sender().ID, err)
	}
	return c.Send(welcomeMessage())
}

func (b *Bot) handleStatus(c tele.Context) error {
	info, err := b.entitlementSvc.GetQuotaInfo(c.Sender().ID)
	if err != nil {
		log.Printf("Failed to load quota info for %d: %v", c.Sender().ID, err)
		return c.Send(providerErrorMessage())
	}
	return c.Send(statusMessage(info.Subscribed, info.FreeRemain, info.FreeDailyLimit,
		info.BudgetRemaining, info.ExpiresAt))
}

func (b *Bot) handleMessage(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	if _, err := b.entitlementSvc.EnsureAccount(userID); err != nil {
		log.Printf("Failed to ensure account %d: %v", userID, err)
		return c.Send(providerErrorMessage())
	}

	// 强制关注频道
	if !b.isChannelMember(userID) {
		markup := &tele.ReplyMarkup{}
		btn := markup.URL("📢 Join Channel", b.cfg.Telegram.ChannelLink)
		markup.Inline(markup.Row(btn))
		return c.Send(joinChannelMessage(), markup)
	}

	// 数字加法，免费且不计额度
	if sum, ok := parseArithmetic(text); ok {
		return c.Send(arithmeticMessage(sum))
	}

	// 管理员统计命令，普通用户发同样文本直接忽略
	if strings.EqualFold(text, adminStatsKeyword) {
		if b.isAdmin(userID) {
			return b.sendAdminStats(c)
		}
		return nil
	}

	return b.handleAIRequest(c, userID, text)
}

// handleAIRequest 计量的 AI 调用路径：先准入判定，调用成功后才落账
func (b *Bot) handleAIRequest(c tele.Context, userID int64, text string) error {
	isImage := IsImageRequest(text)

	decision, err := b.entitlementSvc.Authorize(userID, isImage)
	if err != nil {
		log.Printf("Authorize failed for user %d: %v", userID, err)
		return c.Send(providerErrorMessage())
	}

	if !decision.Allowed() {
		if decision.Kind == service.DecisionDenyNeedsSubscription {
			return c.Send(subscribeMessage(b.cfg.Payments.PaymentURL, userID))
		}
		return c.Send(budgetExhaustedMessage())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	reply, tokens, err := b.ai.Ask(ctx, text)
	if err != nil {
		// 调用失败不扣任何额度
		b.entitlementSvc.RecordFailure(decision)
		log.Printf("AI call failed for user %d: %v", userID, err)
		return c.Send(providerErrorMessage())
	}

	if err := b.entitlementSvc.Confirm(decision); err != nil {
		// 并发请求抢占了额度，不把答案发给用户
		if errors.Is(err, service.ErrNeedsSubscription) {
			return c.Send(subscribeMessage(b.cfg.Payments.PaymentURL, userID))
		}
		if errors.Is(err, service.ErrBudgetExhausted) {
			return c.Send(budgetExhaustedMessage())
		}
		log.Printf("Confirm failed for user %d: %v", userID, err)
		return c.Send(providerErrorMessage())
	}

	log.Printf("AI reply sent to user %d (image=%v, tokens=%d)", userID, isImage, tokens)
	return c.Send(answerMessage(reply))
}

func (b *Bot) sendAdminStats(c tele.Context) error {
	stats, err := b.entitlementSvc.Stats()
	if err != nil {
		log.Printf("Failed to collect stats: %v", err)
		return c.Send(providerErrorMessage())
	}

	uptime := int64(time.Since(b.startedAt).Minutes())
	return c.Send(statsMessage(stats.TotalAccounts, stats.SubscribedAccounts,
		stats.FreeUsedToday, stats.TotalSpent, uptime))
}

// isChannelMember 检查用户是否已关注配置的频道。未配置频道则不限制。
// 查询失败按未关注处理，与原有行为一致
func (b *Bot) isChannelMember(userID int64) bool {
	if b.cfg.Telegram.ChannelUsername == "" {
		return true
	}

	chat, err := b.bot.ChatByUsername(b.cfg.Telegram.ChannelUsername)
	if err != nil {
		log.Printf("Failed to resolve channel %s: %v", b.cfg.Telegram.ChannelUsername, err)
		return false
	}

	member, err := b.bot.ChatMemberOf(chat, &tele.User{ID: userID})
	if err != nil {
		return false
	}

	switch member.Role {
	case tele.Member, tele.Administrator, tele.Creator:
		return true
	}
	return false
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// parseArithmetic 解析 "a+b" 形式的加法请求
func parseArithmetic(text string) (int64, bool) {
	m := arithmeticPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	a, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	b, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return a + b, true
}
