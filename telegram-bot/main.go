package main

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"earn-bot-system/config"
	"earn-bot-system/models"
	"earn-bot-system/services"
	"earn-bot-system/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Per-chat conversation state
var userStates = make(map[int64]string)
var pendingWithdraw = make(map[int64]withdrawDraft)

type withdrawDraft struct {
	Amount decimal.Decimal
	Method models.PayoutMethod
}

type botApp struct {
	bot *tgbotapi.BotAPI
	cfg *config.Config

	accounts    *services.AccountService
	ledger      *services.LedgerService
	referrals   *services.ReferralService
	bonus       *services.BonusService
	withdrawals *services.WithdrawalService
	investments *services.InvestmentService
	stats       *services.StatsService
}

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}
	if err := db.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.Referral{},
		&models.WithdrawalRequest{},
		&models.Investment{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	ledger := services.NewLedgerService(db, cfg.LevelThresholds)
	accounts := services.NewAccountService(db, cfg.LevelThresholds)

	app := &botApp{
		cfg:         cfg,
		accounts:    accounts,
		ledger:      ledger,
		referrals:   services.NewReferralService(db, ledger, accounts, cfg.ReferralBonus),
		bonus:       services.NewBonusService(ledger, accounts, cfg.DailyBonus),
		withdrawals: services.NewWithdrawalService(db, ledger, accounts, cfg.MinWithdraw),
		investments: services.NewInvestmentService(db, ledger, accounts, cfg.InvestmentPlans),
		stats:       services.NewStatsService(db),
	}

	app.bot, err = tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("failed to start bot: ", err)
	}
	log.Printf("✅ Бот запущен: @%s", app.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := app.bot.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery != nil {
			app.handleCallback(update.CallbackQuery)
		} else if update.Message != nil {
			app.handleMessage(update.Message)
		}
	}
}

func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, "file:")), &gorm.Config{})
}

// isSubscribed asks Telegram whether the user is a member of the required
// channel. This is the subscription precondition the core consumes as a bool.
func (a *botApp) isSubscribed(userID int64) bool {
	if a.cfg.ChannelID == "" || a.cfg.IsAdmin(userID) {
		return true
	}
	chat := tgbotapi.ChatConfigWithUser{UserID: userID}
	if chatID, err := strconv.ParseInt(a.cfg.ChannelID, 10, 64); err == nil {
		chat.ChatID = chatID
	} else {
		chat.SuperGroupUsername = a.cfg.ChannelID
	}
	member, err := a.bot.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: chat})
	if err != nil {
		log.Printf("❌ Subscription check failed for %d: %v", userID, err)
		return false
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

func (a *botApp) send(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := a.bot.Send(msg); err != nil {
		log.Printf("❌ Send failed for chat %d: %v", chatID, err)
	}
}

func (a *botApp) handleMessage(message *tgbotapi.Message) {
	userID := message.From.ID

	if state, exists := userStates[userID]; exists && !message.IsCommand() {
		a.handleStateInput(message, state)
		return
	}

	switch message.Command() {
	case "start":
		a.handleStart(message)
	case "admin":
		if a.cfg.IsAdmin(userID) {
			a.showAdminPanel(message.Chat.ID)
		}
	default:
		a.showMainMenu(message.Chat.ID, userID)
	}
}

func (a *botApp) handleStart(message *tgbotapi.Message) {
	userID := message.From.ID

	if _, err := a.accounts.GetOrCreate(userID); err != nil {
		log.Printf("❌ Account creation failed for %d: %v", userID, err)
		return
	}

	subscribed := a.isSubscribed(userID)
	if err := a.accounts.SetSubscribed(userID, subscribed); err != nil {
		log.Printf("❌ Subscription flag update failed for %d: %v", userID, err)
	}
	if !subscribed {
		a.showChannelPrompt(message.Chat.ID)
		return
	}

	// Referral payload: t.me/<bot>?start=<inviter id>
	if payload := message.CommandArguments(); payload != "" {
		_, err := a.referrals.Attribute(userID, payload, subscribed)
		switch {
		case err == nil:
			log.Printf("👥 Attributed %d via code %s", userID, payload)
		case errors.Is(err, services.ErrAlreadyReferred),
			errors.Is(err, services.ErrSelfReferral),
			errors.Is(err, services.ErrUnknownInviter):
			// expected on repeat /start taps; nothing to tell the user
		default:
			log.Printf("❌ Attribution failed for %d: %v", userID, err)
		}
	}

	a.send(message.Chat.ID, fmt.Sprintf(
		"🌟 *Добро пожаловать, %s!*\n\n"+
			"💰 Приглашайте друзей и получайте *%s* за каждого\n"+
			"🎁 Забирайте ежедневный бонус *%s*\n"+
			"📈 Инвестируйте и получайте прибыль\n"+
			"💸 Выводите от *%s*",
		message.From.FirstName,
		utils.FormatCurrency(a.cfg.ReferralBonus),
		utils.FormatCurrency(a.cfg.DailyBonus),
		utils.FormatCurrency(a.cfg.MinWithdraw)),
		mainMenuKeyboard(a.cfg.IsAdmin(userID)))
}

func (a *botApp) handleStateInput(message *tgbotapi.Message, state string) {
	userID := message.From.ID
	chatID := message.Chat.ID
	delete(userStates, userID)

	switch state {
	case "withdraw_details":
		draft, ok := pendingWithdraw[userID]
		if !ok {
			a.send(chatID, "❌ Что-то пошло не так. Начните вывод заново.", backKeyboard("menu"))
			return
		}
		delete(pendingWithdraw, userID)

		request, err := a.withdrawals.Request(userID, draft.Amount, draft.Method, strings.TrimSpace(message.Text), a.isSubscribed(userID))
		if err != nil {
			a.send(chatID, withdrawErrorText(err, a.cfg.MinWithdraw), backKeyboard("withdraw"))
			return
		}
		a.send(chatID, fmt.Sprintf(
			"✅ *Заявка на вывод создана!*\n\n💰 Сумма: *%s*\n💳 Система: *%s*\n🆔 Номер заявки: `%s`\n\n⏳ Срок обработки до 24 часов",
			utils.FormatCurrency(request.Amount), strings.ToUpper(string(request.Method)), request.ID),
			backKeyboard("menu"))
		a.notifyAdminsWithdrawal(request)

	case "admin_broadcast":
		if !a.cfg.IsAdmin(userID) {
			return
		}
		a.broadcast(chatID, message.Text)

	case "admin_block", "admin_unblock":
		if !a.cfg.IsAdmin(userID) {
			return
		}
		target, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
		if err != nil {
			a.send(chatID, "❌ Неверный ID пользователя", backKeyboard("admin"))
			return
		}
		if err := a.accounts.SetBlocked(target, state == "admin_block"); err != nil {
			a.send(chatID, "❌ Пользователь не найден", backKeyboard("admin"))
			return
		}
		a.send(chatID, fmt.Sprintf("✅ Готово: пользователь `%d`", target), backKeyboard("admin"))
	}
}

func (a *botApp) handleCallback(query *tgbotapi.CallbackQuery) {
	a.bot.Request(tgbotapi.NewCallback(query.ID, ""))

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data

	if !a.cfg.IsAdmin(userID) && data != "check_subscription" && !a.isSubscribed(userID) {
		a.showChannelPrompt(chatID)
		return
	}

	switch {
	case data == "menu":
		a.showMainMenu(chatID, userID)
	case data == "check_subscription":
		if a.isSubscribed(userID) {
			a.accounts.SetSubscribed(userID, true)
			a.showMainMenu(chatID, userID)
		} else {
			a.showChannelPrompt(chatID)
		}
	case data == "balance":
		a.showBalance(chatID, userID)
	case data == "bonus":
		a.claimBonus(chatID, userID)
	case data == "referral":
		a.showReferral(chatID, userID)
	case data == "withdraw":
		a.showWithdrawMenu(chatID, userID)
	case data == "invest":
		a.showInvestMenu(chatID, userID)
	case strings.HasPrefix(data, "wd_amount_"):
		a.chooseWithdrawMethod(chatID, strings.TrimPrefix(data, "wd_amount_"))
	case strings.HasPrefix(data, "wd_method_"):
		a.askWithdrawDetails(chatID, userID, strings.TrimPrefix(data, "wd_method_"))
	case strings.HasPrefix(data, "invest_"):
		a.invest(chatID, userID, strings.TrimPrefix(data, "invest_"))
	case data == "admin":
		if a.cfg.IsAdmin(userID) {
			a.showAdminPanel(chatID)
		}
	case data == "admin_stats":
		if a.cfg.IsAdmin(userID) {
			a.showAdminStats(chatID)
		}
	case data == "admin_pending":
		if a.cfg.IsAdmin(userID) {
			a.showPendingWithdrawals(chatID)
		}
	case data == "admin_broadcast":
		if a.cfg.IsAdmin(userID) {
			userStates[userID] = data
			a.send(chatID, "📢 *Рассылка сообщения*\n\nВведите текст для рассылки:", backKeyboard("admin"))
		}
	case data == "admin_block", data == "admin_unblock":
		if a.cfg.IsAdmin(userID) {
			userStates[userID] = data
			a.send(chatID, "✏️ Введите ID пользователя:", backKeyboard("admin"))
		}
	case strings.HasPrefix(data, "approve_"), strings.HasPrefix(data, "reject_"):
		if a.cfg.IsAdmin(userID) {
			a.resolveWithdrawal(chatID, userID, data)
		}
	}
}

func (a *botApp) showMainMenu(chatID, userID int64) {
	a.send(chatID, "📋 *Главное меню*\n\nВыберите раздел:", mainMenuKeyboard(a.cfg.IsAdmin(userID)))
}

func (a *botApp) showChannelPrompt(chatID int64) {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if a.cfg.ChannelLink != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Подписаться на канал", a.cfg.ChannelLink)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Я подписался", "check_subscription")))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	a.send(chatID, "🔒 Для использования бота необходимо подписаться на наш канал", &kb)
}

func (a *botApp) showBalance(chatID, userID int64) {
	account, err := a.accounts.Get(userID)
	if err != nil {
		a.send(chatID, "❌ Пользователь не найден. Отправьте /start.", nil)
		return
	}
	balance, err := a.ledger.BalanceOf(userID)
	if err != nil {
		a.send(chatID, "❌ Ошибка. Попробуйте позже.", backKeyboard("menu"))
		return
	}
	text := fmt.Sprintf(
		"💰 *Ваш баланс*\n\n💵 Доступно: *%s*\n📈 Всего заработано: *%s*\n💸 Выведено: *%s*\n🏆 Уровень: *%s*",
		utils.FormatCurrency(balance),
		utils.FormatCurrency(account.LifetimeEarned),
		utils.FormatCurrency(account.Withdrawn),
		account.Level)
	if next, missing, ok := services.NextLevel(a.cfg.LevelThresholds, account.LifetimeEarned); ok {
		text += fmt.Sprintf("\n⬆️ До уровня *%s*: ещё *%s*", next, utils.FormatCurrency(missing))
	}
	a.send(chatID, text, backKeyboard("menu"))
}

func (a *botApp) claimBonus(chatID, userID int64) {
	entry, err := a.bonus.ClaimDailyBonus(userID, a.isSubscribed(userID))
	if err != nil {
		if errors.Is(err, services.ErrBonusAlreadyClaimed) {
			wait, werr := a.bonus.NextClaimIn(userID)
			if werr == nil {
				a.send(chatID, fmt.Sprintf("⏳ Бонус уже получен. Следующий через *%s*", utils.FormatDuration(wait)), backKeyboard("menu"))
				return
			}
		}
		a.send(chatID, "❌ Бонус сейчас недоступен", backKeyboard("menu"))
		return
	}
	a.send(chatID, fmt.Sprintf("🎁 *Бонус получен!*\n\n+%s на ваш баланс", utils.FormatCurrency(entry.Amount)), backKeyboard("menu"))
}

func (a *botApp) showReferral(chatID, userID int64) {
	stats, err := a.referrals.StatsFor(userID)
	if err != nil {
		a.send(chatID, "❌ Ошибка. Попробуйте позже.", backKeyboard("menu"))
		return
	}
	refLink := fmt.Sprintf("https://t.me/%s?start=%d", a.bot.Self.UserName, userID)
	a.send(chatID, fmt.Sprintf(
		"👥 *Реферальная программа*\n\n💰 Получайте *%s* за каждого друга!\n\n🔗 Ваша ссылка:\n`%s`\n\n📊 Приглашено: *%d*\n💵 Заработано: *%s*",
		utils.FormatCurrency(a.cfg.ReferralBonus), refLink, stats.Count, utils.FormatCurrency(stats.Earned)),
		backKeyboard("menu"))
}

func (a *botApp) showWithdrawMenu(chatID, userID int64) {
	balance, err := a.ledger.BalanceOf(userID)
	if err != nil {
		a.send(chatID, "❌ Ошибка. Попробуйте позже.", backKeyboard("menu"))
		return
	}
	if balance.Cmp(a.cfg.MinWithdraw) < 0 {
		a.send(chatID, fmt.Sprintf(
			"❌ *Недостаточно средств*\n\n💰 Баланс: *%s*\n💳 Минимум для вывода: *%s*",
			utils.FormatCurrency(balance), utils.FormatCurrency(a.cfg.MinWithdraw)),
			backKeyboard("menu"))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, amount := range []int64{50, 100, 500, 1000} {
		d := decimal.NewFromInt(amount)
		if d.Cmp(a.cfg.MinWithdraw) >= 0 && d.Cmp(balance) <= 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💸 "+utils.FormatCurrency(d), "wd_amount_"+d.String())))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Назад", "menu")))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	a.send(chatID, fmt.Sprintf("💸 *Вывод средств*\n\n💰 Баланс: *%s*\n\nВыберите сумму:", utils.FormatCurrency(balance)), &kb)
}

func (a *botApp) chooseWithdrawMethod(chatID int64, amount string) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Карта", "wd_method_card_"+amount),
			tgbotapi.NewInlineKeyboardButtonData("🥝 QIWI", "wd_method_qiwi_"+amount),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💜 ЮMoney", "wd_method_ymoney_"+amount),
			tgbotapi.NewInlineKeyboardButtonData("« Назад", "withdraw"),
		),
	)
	a.send(chatID, "💳 Выберите способ вывода:", &kb)
}

func (a *botApp) askWithdrawDetails(chatID, userID int64, payload string) {
	// payload: <method>_<amount>
	method, amountStr, ok := strings.Cut(payload, "_")
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return
	}
	pendingWithdraw[userID] = withdrawDraft{Amount: amount, Method: models.PayoutMethod(method)}
	userStates[userID] = "withdraw_details"
	a.send(chatID, fmt.Sprintf(
		"💳 *Вывод %s через %s*\n\n✏️ Отправьте реквизиты для вывода средств:",
		utils.FormatCurrency(amount), strings.ToUpper(method)),
		backKeyboard("withdraw"))
}

func (a *botApp) showInvestMenu(chatID, userID int64) {
	stats, err := a.investments.StatsFor(userID)
	if err != nil {
		a.send(chatID, "❌ Ошибка. Попробуйте позже.", backKeyboard("menu"))
		return
	}

	text := "💎 *Инвестиционные планы*\n"
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, id := range []string{"basic", "advanced", "vip"} {
		plan, ok := a.cfg.InvestmentPlans[id]
		if !ok {
			continue
		}
		percent := plan.DailyProfit.Mul(decimal.NewFromInt(100))
		text += fmt.Sprintf("\n*%s*: от %s, %s%% в день, %d дней",
			plan.Name, utils.FormatCurrency(plan.MinAmount), percent, plan.TermDays)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("💰 %s — %s", plan.Name, utils.FormatCurrency(plan.MinAmount)),
				"invest_"+id)))
	}
	text += fmt.Sprintf("\n\n📊 Активных: *%d*\n💵 Инвестировано: *%s*\n📈 Прибыль: *%s*",
		stats.Active, utils.FormatCurrency(stats.TotalInvested), utils.FormatCurrency(stats.TotalProfit))

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Назад", "menu")))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	a.send(chatID, text, &kb)
}

func (a *botApp) invest(chatID, userID int64, planID string) {
	plan, ok := a.cfg.InvestmentPlans[planID]
	if !ok {
		return
	}
	investment, err := a.investments.Invest(userID, planID, plan.MinAmount, a.isSubscribed(userID))
	if err != nil {
		if errors.Is(err, services.ErrInsufficientFunds) {
			a.send(chatID, "❌ Недостаточно средств для этого плана", backKeyboard("invest"))
			return
		}
		a.send(chatID, "❌ Не удалось создать инвестицию", backKeyboard("invest"))
		return
	}
	a.send(chatID, fmt.Sprintf(
		"✅ *Инвестиция создана!*\n\n💰 Сумма: *%s*\n📈 План: *%s*\n📅 Завершение: %s",
		utils.FormatCurrency(investment.Amount), plan.Name, investment.EndDate.Format("02.01.2006")),
		backKeyboard("menu"))
}

// --- Admin screens ---

func (a *botApp) showAdminPanel(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "admin_stats"),
			tgbotapi.NewInlineKeyboardButtonData("💸 Заявки", "admin_pending"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Блокировка", "admin_block"),
			tgbotapi.NewInlineKeyboardButtonData("✅ Разблокировка", "admin_unblock"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Рассылка", "admin_broadcast"),
			tgbotapi.NewInlineKeyboardButtonData("« Меню", "menu"),
		),
	)
	a.send(chatID, "👑 *АДМИН ПАНЕЛЬ*", &kb)
}

func (a *botApp) showAdminStats(chatID int64) {
	stats, err := a.stats.Global()
	if err != nil {
		a.send(chatID, "❌ Ошибка получения статистики", backKeyboard("admin"))
		return
	}
	a.send(chatID, fmt.Sprintf(
		"📊 *СТАТИСТИКА БОТА*\n\n👥 Пользователей: *%d*\n✅ Подписаны: *%d*\n💰 Общий баланс: *%s*\n📈 Заработано: *%s*\n💸 Выведено: *%s*\n📥 Инвестировано: *%s*\n⏳ Заявок на вывод: *%d*",
		stats.TotalUsers, stats.ActiveUsers,
		utils.FormatCurrency(stats.TotalBalance),
		utils.FormatCurrency(stats.TotalEarned),
		utils.FormatCurrency(stats.TotalWithdrawn),
		utils.FormatCurrency(stats.TotalInvested),
		stats.PendingWithdraws),
		backKeyboard("admin"))
}

func (a *botApp) showPendingWithdrawals(chatID int64) {
	pending, err := a.withdrawals.Pending()
	if err != nil {
		a.send(chatID, "❌ Ошибка получения заявок", backKeyboard("admin"))
		return
	}
	if len(pending) == 0 {
		a.send(chatID, "✅ Нет заявок на вывод", backKeyboard("admin"))
		return
	}
	for _, request := range pending {
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", "approve_"+request.ID),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", "reject_"+request.ID),
			),
		)
		a.send(chatID, fmt.Sprintf(
			"💰 *Заявка `%s`*\n\n👤 Пользователь: `%d`\n💵 Сумма: *%s*\n💳 Система: *%s*\n📝 Реквизиты: `%s`\n📅 %s",
			request.ID, request.UserID,
			utils.FormatCurrency(request.Amount),
			strings.ToUpper(string(request.Method)),
			request.Details,
			request.CreatedAt.Format("02.01.2006 15:04")),
			&kb)
	}
}

func (a *botApp) resolveWithdrawal(chatID, operatorID int64, data string) {
	approve := strings.HasPrefix(data, "approve_")
	requestID := strings.TrimPrefix(strings.TrimPrefix(data, "approve_"), "reject_")

	request, err := a.withdrawals.Resolve(requestID, operatorID, approve)
	if err != nil {
		if errors.Is(err, services.ErrNotPending) {
			a.send(chatID, "⚠️ Заявка уже обработана", backKeyboard("admin"))
			return
		}
		a.send(chatID, "❌ Ошибка обработки заявки", backKeyboard("admin"))
		return
	}

	verdict := "✅ одобрена"
	userNote := fmt.Sprintf("✅ *Ваша заявка на вывод %s одобрена!*", utils.FormatCurrency(request.Amount))
	if !approve {
		verdict = "❌ отклонена"
		userNote = fmt.Sprintf("❌ *Заявка на вывод %s отклонена.* Средства возвращены на баланс.", utils.FormatCurrency(request.Amount))
	}
	a.send(chatID, fmt.Sprintf("Заявка `%s` %s", request.ID, verdict), backKeyboard("admin"))
	a.send(request.UserID, userNote, nil)
}

// broadcast sends a message to every registered user and reports the
// delivered/failed split back to the operator.
func (a *botApp) broadcast(chatID int64, text string) {
	ids, err := a.accounts.UserIDs()
	if err != nil {
		a.send(chatID, "❌ Не удалось получить список пользователей", backKeyboard("admin"))
		return
	}

	success, failed := 0, 0
	for _, userID := range ids {
		msg := tgbotapi.NewMessage(userID, text)
		msg.ParseMode = "Markdown"
		if _, err := a.bot.Send(msg); err != nil {
			failed++
			continue
		}
		success++
	}

	a.send(chatID, fmt.Sprintf(
		"📢 *Результаты рассылки*\n\n✅ Успешно отправлено: *%d*\n❌ Ошибок отправки: *%d*\n📊 Всего пользователей: *%d*",
		success, failed, len(ids)),
		backKeyboard("admin"))
}

func (a *botApp) notifyAdminsWithdrawal(request *models.WithdrawalRequest) {
	for _, adminID := range a.cfg.AdminIDs {
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", "approve_"+request.ID),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", "reject_"+request.ID),
			),
		)
		msg := tgbotapi.NewMessage(adminID, fmt.Sprintf(
			"💰 *НОВАЯ ЗАЯВКА НА ВЫВОД*\n\n👤 Пользователь: `%d`\n💵 Сумма: *%s*\n💳 Система: *%s*\n📝 Реквизиты: `%s`",
			request.UserID,
			utils.FormatCurrency(request.Amount),
			strings.ToUpper(string(request.Method)),
			request.Details))
		msg.ParseMode = "Markdown"
		msg.ReplyMarkup = kb
		if _, err := a.bot.Send(msg); err != nil {
			log.Printf("❌ Admin notify failed for %d: %v", adminID, err)
		}
	}
}

// --- Keyboards ---

func mainMenuKeyboard(isAdmin bool) *tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Баланс", "balance"),
			tgbotapi.NewInlineKeyboardButtonData("🎁 Бонус", "bonus"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Рефералы", "referral"),
			tgbotapi.NewInlineKeyboardButtonData("📈 Инвестиции", "invest"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💸 Вывод средств", "withdraw"),
		),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 Админ панель", "admin")))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func backKeyboard(target string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Назад", target)))
	return &kb
}

func withdrawErrorText(err error, minimum decimal.Decimal) string {
	switch {
	case errors.Is(err, services.ErrBelowMinimum):
		return fmt.Sprintf("❌ Минимальная сумма вывода: %s", utils.FormatCurrency(minimum))
	case errors.Is(err, services.ErrInsufficientFunds):
		return "❌ Недостаточно средств"
	case errors.Is(err, services.ErrInvalidDetails):
		return "❌ Неверный формат реквизитов"
	}
	return "❌ Ошибка создания заявки. Попробуйте позже."
}
