package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gvidela/limitereal/limit"
)

// setupStep tags where a guided configuration stands. Each step asks for
// exactly one profile field; the step is explicit state, never inferred
// from which fields happen to be filled.
type setupStep int

const (
	awaitingTotalLimit setupStep = iota
	awaitingMonthSpend
	awaitingInstallments
	awaitingClosingDay
)

// setupSession is the per-chat state of a guided configuration.
type setupSession struct {
	step    setupStep
	profile limit.Profile
}

const setupIntro = "⚙️ *Configuración de tu tarjeta*\n\n" +
	"Vamos a configurar tu tarjeta paso a paso. " +
	"Escribí *cancelar* en cualquier momento para salir.\n\n" +
	"1️⃣ Enviame el *límite total* de tu tarjeta (ejemplo: 50000)"

// handleSetupStep consumes one user reply for an active session. It returns
// the reply text and whether the session is finished (completed or failed
// to persist).
func (c *controller) handleSetupStep(ctx context.Context, s *setupSession, text string, now time.Time) (string, bool) {
	switch s.step {
	case awaitingTotalLimit:
		val, err := parseAmount(text)
		if err != nil || !val.IsPositive() {
			return "❌ Por favor, enviame un número válido mayor a 0", false
		}
		s.profile.TotalLimit = val
		s.step = awaitingMonthSpend
		return fmt.Sprintf("✅ Límite total: %s\n\n2️⃣ Enviame los *gastos del mes* (ejemplo: 15000 o 0 si no hay)",
			limit.FormatMoney(val)), false

	case awaitingMonthSpend:
		val, err := parseAmount(text)
		if err != nil || val.IsNegative() {
			return "❌ Por favor, enviame un número válido (0 o mayor)", false
		}
		s.profile.MonthSpend = val
		s.step = awaitingInstallments
		return fmt.Sprintf("✅ Gastos del mes: %s\n\n3️⃣ Enviame las *cuotas activas* (ejemplo: 5000 o 0 si no hay)",
			limit.FormatMoney(val)), false

	case awaitingInstallments:
		val, err := parseAmount(text)
		if err != nil || val.IsNegative() {
			return "❌ Por favor, enviame un número válido (0 o mayor)", false
		}
		s.profile.ActiveInstallments = val
		s.step = awaitingClosingDay
		return fmt.Sprintf("✅ Cuotas activas: %s\n\n4️⃣ Enviame el *día de cierre* de tu tarjeta (número del 1 al 31)",
			limit.FormatMoney(val)), false

	case awaitingClosingDay:
		day, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || day < 1 || day > 31 {
			return "❌ Por favor, enviame un número entre 1 y 31", false
		}
		s.profile.ClosingDay = day

		res, err := c.domain.Configure(ctx, s.profile, now)
		if err != nil {
			c.log.WithError(err).Error("configure failed")
			return "❌ Error al guardar la configuración. Intentá de nuevo con *configurar*.", true
		}

		return fmt.Sprintf("✅ *Configuración completada*\n\n"+
			"💳 Límite total: %s\n"+
			"📊 Gastos del mes: %s\n"+
			"📅 Cuotas activas: %s\n"+
			"📆 Día de cierre: %d\n\n"+
			"💳 *Hoy podés gastar*\n*%s*\n\n"+
			"📅 Cierre en %d días\n%s %s\n\n"+
			"Escribí *hoy* para consultar tu disponible en cualquier momento.",
			limit.FormatMoney(s.profile.TotalLimit),
			limit.FormatMoney(s.profile.MonthSpend),
			limit.FormatMoney(s.profile.ActiveInstallments),
			day,
			limit.FormatMoney(res.AvailableToday),
			res.DaysRemaining,
			statusEmoji(res.Status), statusText(res.Status)), true
	}

	return "", true
}

// parseAmount reads a user-typed amount, accepting a decimal comma.
func parseAmount(text string) (decimal.Decimal, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	return decimal.NewFromString(text)
}
