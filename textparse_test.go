package mijnbib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("25/11/2023")
	require.NoError(t, err)
	require.Equal(t, date(2023, time.November, 25), d)

	d, err = parseDate(" 08/01/2024 ")
	require.NoError(t, err)
	require.Equal(t, date(2024, time.January, 8), d)

	_, err = parseDate("2023-11-25")
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"3,20", 3.2},
		{"0,00", 0.0},
		{"€ 3,20", 3.2},
		{"€3,20", 3.2},
		{"12,50 euro", 12.5},
		{"7", 7},
	}
	for _, c := range cases {
		got, err := parseAmount(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got, c.in)
	}

	_, err := parseAmount("bogus")
	require.Error(t, err)
}

func TestParseCount(t *testing.T) {
	require.Nil(t, parseCount(""))
	require.Nil(t, parseCount("bogus"))
	require.Equal(t, ptr(0), parseCount("Geen uitleningen"))
	require.Equal(t, ptr(0), parseCount("geen reservaties"))
	require.Equal(t, ptr(5), parseCount("5 uitleningen"))
	require.Equal(t, ptr(12), parseCount("  12 reservaties  "))
}
