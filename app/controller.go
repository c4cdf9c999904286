package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gvidela/limitereal/limit"
	"github.com/gvidela/limitereal/tg"
)

// messageSender is the slice of the bot the controller needs.
type messageSender interface {
	SendMessage(m tg.BotMessage) (int, error)
}

// controller translates chat commands into domain calls and formats the
// replies. One instance serves the single configured chat.
type controller struct {
	cfg      Config
	domain   *limit.Domain
	bot      messageSender
	log      *logrus.Logger
	sessions map[int64]*setupSession
	now      func() time.Time
}

func newController(cfg Config, domain *limit.Domain, bot messageSender, log *logrus.Logger) *controller {
	return &controller{
		cfg:      cfg,
		domain:   domain,
		bot:      bot,
		log:      log,
		sessions: make(map[int64]*setupSession),
		now:      time.Now,
	}
}

var spendRE = regexp.MustCompile(`^gast[eé]\s+(\d+(?:[.,]\d+)?)$`)

func (c *controller) handleUserMessage(ctx context.Context, msg tg.UserMsg) error {
	if msg.ChatID != c.cfg.TgChatID {
		c.log.WithField("chat_id", msg.ChatID).Warn("message from unknown chat ignored")
		return nil
	}

	text := strings.ToLower(strings.TrimSpace(msg.Text))
	now := c.now()

	if text == "cancelar" {
		if _, ok := c.sessions[msg.ChatID]; ok {
			delete(c.sessions, msg.ChatID)
			return c.reply(msg.ChatID, "✅ Configuración cancelada.")
		}
		return c.reply(msg.ChatID, "No hay nada para cancelar.")
	}

	if s, ok := c.sessions[msg.ChatID]; ok {
		replyText, done := c.handleSetupStep(ctx, s, text, now)
		if done {
			delete(c.sessions, msg.ChatID)
		}
		return c.reply(msg.ChatID, replyText)
	}

	switch {
	case text == "hola" || text == "hi" || text == "inicio":
		return c.reply(msg.ChatID, greeting)

	case text == "hoy" || strings.Contains(text, "cuanto puedo gastar") || strings.Contains(text, "cuánto puedo gastar"):
		return c.showAvailableToday(ctx, msg.ChatID, now)

	case text == "resumen" || text == "estado":
		return c.showSummary(ctx, msg.ChatID, now)

	case spendRE.MatchString(text):
		return c.recordExpense(ctx, msg.ChatID, text, now)

	case text == "deshacer":
		return c.undoExpense(ctx, msg.ChatID, now)

	case text == "reset mes" || text == "resetear mes":
		return c.resetMonth(ctx, msg.ChatID)

	case text == "configurar" || text == "config":
		c.sessions[msg.ChatID] = &setupSession{step: awaitingTotalLimit}
		return c.reply(msg.ChatID, setupIntro)

	case text == "ayuda" || text == "help":
		return c.reply(msg.ChatID, helpText)

	default:
		return c.reply(msg.ChatID, "🤔 No entendí ese comando.\n\nEscribí *ayuda* para ver los comandos disponibles.")
	}
}

func (c *controller) showAvailableToday(ctx context.Context, chatID int64, now time.Time) error {
	res, err := c.domain.Overview(ctx, now)
	if errors.Is(err, limit.ErrNotConfigured) {
		return c.reply(chatID, notConfiguredText)
	}
	if err != nil {
		return fmt.Errorf("domain.Overview: %w", err)
	}

	return c.reply(chatID, fmt.Sprintf(
		"💳 *Hoy podés gastar*\n*%s*\n\n📅 Cierre en %d días\n%s %s",
		limit.FormatMoney(res.AvailableToday),
		res.DaysRemaining,
		statusEmoji(res.Status), statusText(res.Status)))
}

func (c *controller) showSummary(ctx context.Context, chatID int64, now time.Time) error {
	res, err := c.domain.Overview(ctx, now)
	if errors.Is(err, limit.ErrNotConfigured) {
		return c.reply(chatID, notConfiguredText)
	}
	if err != nil {
		return fmt.Errorf("domain.Overview: %w", err)
	}

	return c.reply(chatID, fmt.Sprintf(
		"📊 *Resumen*\n\n"+
			"💳 Límite real disponible: %s\n"+
			"💰 Disponible hoy: %s\n"+
			"💸 Gastos de hoy: %s\n"+
			"📅 Días hasta cierre: %d\n\n"+
			"%s Estado: %s",
		limit.FormatMoney(res.RealLimit),
		limit.FormatMoney(res.AvailableToday),
		limit.FormatMoney(res.TodaySpent),
		res.DaysRemaining,
		statusEmoji(res.Status), statusText(res.Status)))
}

func (c *controller) recordExpense(ctx context.Context, chatID int64, text string, now time.Time) error {
	match := spendRE.FindStringSubmatch(text)
	amount, err := parseAmount(match[1])
	if err != nil {
		return c.reply(chatID, "❌ No pude entender el monto. Escribí: *Gasté 1200*")
	}

	exp, res, err := c.domain.AddExpense(ctx, amount, now)
	if errors.Is(err, limit.ErrInvalidAmount) {
		return c.reply(chatID, "❌ El monto debe ser mayor a 0")
	}
	if errors.Is(err, limit.ErrNotConfigured) {
		return c.reply(chatID, notConfiguredText)
	}
	if err != nil {
		return fmt.Errorf("domain.AddExpense: %w", err)
	}

	return c.reply(chatID, fmt.Sprintf(
		"✔️ *Gasto registrado*\nMonto: %s\n\nTe quedan %s hoy\n%s",
		limit.FormatMoney(exp.Amount),
		limit.FormatMoney(res.AvailableToday),
		statusEmoji(res.Status)))
}

func (c *controller) undoExpense(ctx context.Context, chatID int64, now time.Time) error {
	exp, res, err := c.domain.UndoLastExpense(ctx, now)
	if errors.Is(err, limit.ErrExpenseNotFound) {
		return c.reply(chatID, "No hay gastos registrados hoy para deshacer.")
	}
	if errors.Is(err, limit.ErrNotConfigured) {
		return c.reply(chatID, notConfiguredText)
	}
	if err != nil {
		return fmt.Errorf("domain.UndoLastExpense: %w", err)
	}

	return c.reply(chatID, fmt.Sprintf(
		"↩️ Gasto de %s eliminado.\n\nTe quedan %s hoy",
		limit.FormatMoney(exp.Amount),
		limit.FormatMoney(res.AvailableToday)))
}

func (c *controller) resetMonth(ctx context.Context, chatID int64) error {
	err := c.domain.ResetMonth(ctx)
	if errors.Is(err, limit.ErrNotConfigured) {
		return c.reply(chatID, notConfiguredText)
	}
	if err != nil {
		return fmt.Errorf("domain.ResetMonth: %w", err)
	}
	return c.reply(chatID, "✅ Mes reseteado correctamente. Los gastos del mes y de hoy fueron limpiados.")
}

// sendDigest pushes the morning summary. Nothing is sent before the first
// configuration.
func (c *controller) sendDigest(ctx context.Context) error {
	res, err := c.domain.Overview(ctx, c.now())
	if errors.Is(err, limit.ErrNotConfigured) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("domain.Overview: %w", err)
	}

	return c.reply(c.cfg.TgChatID, fmt.Sprintf(
		"☀️ *Buen día*\n\n💳 Hoy podés gastar *%s*\n📅 Cierre en %d días\n%s %s",
		limit.FormatMoney(res.AvailableToday),
		res.DaysRemaining,
		statusEmoji(res.Status), statusText(res.Status)))
}

func (c *controller) reply(chatID int64, text string) error {
	_, err := c.bot.SendMessage(tg.BotMessage{
		ChatID:       chatID,
		Text:         text,
		TextMarkdown: true,
	})
	if err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}
	return nil
}

func statusEmoji(s limit.Status) string {
	switch s {
	case limit.StatusOK:
		return "✅"
	case limit.StatusWarning:
		return "⚠️"
	default:
		return "❌"
	}
}

func statusText(s limit.Status) string {
	switch s {
	case limit.StatusOK:
		return "Vas bien"
	case limit.StatusWarning:
		return "Cuidado, te queda poco"
	default:
		return "No tenés crédito disponible hoy"
	}
}

const greeting = "👋 ¡Hola! Soy *Límite Real*\n\n" +
	"Te ayudo a saber cuánto podés gastar HOY con tu tarjeta sin pasarte.\n\n" +
	"📋 *Aviso legal:*\n" +
	"ℹ️ Límite Real no es un banco ni una entidad financiera. " +
	"No tiene acceso a tu tarjeta. " +
	"Los cálculos son estimaciones basadas en los datos que vos ingresás.\n\n" +
	"💬 Escribí *ayuda* para ver los comandos disponibles."

const helpText = "📚 *Comandos disponibles*\n\n" +
	"💬 *hoy* - Ver cuánto podés gastar hoy\n" +
	"📊 *resumen* - Ver resumen completo\n" +
	"💸 *Gasté 1200* - Registrar un gasto\n" +
	"↩️ *deshacer* - Eliminar el último gasto\n" +
	"⚙️ *configurar* - Configurar tu tarjeta\n" +
	"🔄 *reset mes* - Resetear el mes\n" +
	"❓ *ayuda* - Ver esta ayuda"

const notConfiguredText = "⚠️ Aún no configuraste tu tarjeta.\n\nEscribí *configurar* para empezar."
