// Package format holds the small formatting helpers shared by the kiosk
// flows: local-date serialization and the German display formats used on
// kiosk screens.
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	dayLayout     = time.DateOnly
	displayLayout = "02.01.2006"
)

var printer = message.NewPrinter(language.German)

// DateToLocalString serializes t as YYYY-MM-DD in local time. The store
// keys day fields on this form; converting through UTC shifts the day for
// evening timestamps, so the local wall clock is used.
func DateToLocalString(t time.Time) string {
	return t.Format(dayLayout)
}

// LocalStringToDate parses a YYYY-MM-DD string to midnight local time.
func LocalStringToDate(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.Local)
}

// FormatDate renders a stored YYYY-MM-DD value as DD.MM.YYYY.
func FormatDate(s string) string {
	t, err := LocalStringToDate(s)
	if err != nil {
		return s
	}
	return t.Format(displayLayout)
}

// FormatCurrency renders a EUR amount for display, de-DE style.
func FormatCurrency(amount float64) string {
	return printer.Sprintf("%.2f €", amount)
}

// FormatIID renders a display number zero-padded to 4 digits.
func FormatIID(iid int) string {
	return fmt.Sprintf("%04d", iid)
}
