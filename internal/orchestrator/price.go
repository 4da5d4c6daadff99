package orchestrator

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"placepage/internal/domain"
)

type priceFormatter struct {
	printer *message.Printer
}

func newPriceFormatter(lang string) *priceFormatter {
	tag := language.English
	if lang != "" {
		if t, err := language.Parse(strings.ReplaceAll(lang, "_", "-")); err == nil {
			tag = t
		}
	}
	return &priceFormatter{printer: message.NewPrinter(tag)}
}

// format renders amount with the currency symbol; unknown currencies or
// amounts fall back to "<amount> <code>".
func (f *priceFormatter) format(p domain.Price) string {
	amount := strings.TrimSpace(strings.ReplaceAll(p.Amount, ",", "."))
	if amount == "" {
		return ""
	}
	unit, err := currency.ParseISO(p.Currency)
	if err != nil {
		return strings.TrimSpace(p.Amount + " " + p.Currency)
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return strings.TrimSpace(p.Amount + " " + p.Currency)
	}
	return f.printer.Sprint(currency.Symbol(unit.Amount(v)))
}
