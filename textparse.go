package mijnbib

import (
	"strconv"
	"strings"
	"time"
)

// The site renders everything in a single, fixed Dutch locale: dates as
// DD/MM/YYYY, currency with a comma decimal separator, and "Geen" as the
// word for an empty item list. No internationalization is attempted.
const dateFormat = "02/01/2006"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, strings.TrimSpace(s))
}

// parseAmount converts a site currency string such as "3,20", "€ 3,20" or
// "0,00 euro" to a float. The currency symbol and any trailing unit words
// are stripped before conversion.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

// parseCount interprets an item-count fragment such as "5 uitleningen" or
// "Geen uitleningen". The "Geen" marker is a confirmed zero; anything
// unrecognizable is reported as unknown (nil), never as zero.
func parseCount(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(s), "geen") {
		zero := 0
		return &zero
	}
	fields := strings.Fields(s)
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &n
}
