package common

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPluralizePoints(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "очков"},
		{1, "очко"},
		{2, "очка"},
		{4, "очка"},
		{5, "очков"},
		{11, "очков"},
		{12, "очков"},
		{14, "очков"},
		{21, "очко"},
		{22, "очка"},
		{100, "очков"},
		{101, "очко"},
		{111, "очков"},
		{-1, "очко"},
		{-22, "очка"},
	}
	for _, tc := range cases {
		if got := PluralizePoints(tc.n); got != tc.want {
			t.Errorf("PluralizePoints(%d) = %s, ожидалось %s", tc.n, got, tc.want)
		}
	}
}

func TestPluralizeDays(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{1, "день"},
		{2, "дня"},
		{5, "дней"},
		{11, "дней"},
		{14, "дней"},
		{21, "день"},
		{30, "дней"},
	}
	for _, tc := range cases {
		if got := PluralizeDays(tc.n); got != tc.want {
			t.Errorf("PluralizeDays(%d) = %s, ожидалось %s", tc.n, got, tc.want)
		}
	}
}

func TestFormatPoints(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"150", "150 очков"},
		{"1", "1 очко"},
		{"2.5", "2.5 очка"},
		{"0.5", "0.5 очка"},
		{"22", "22 очка"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("decimal %s: %v", tc.amount, err)
		}
		if got := FormatPoints(d); got != tc.want {
			t.Errorf("FormatPoints(%s) = %q, ожидалось %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatPointsDelta(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"100", "+100 очков"},
		{"0", "+0 очков"},
		{"-50", "-50 очков"},
		{"2.5", "+2.5 очка"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("decimal %s: %v", tc.amount, err)
		}
		if got := FormatPointsDelta(d); got != tc.want {
			t.Errorf("FormatPointsDelta(%s) = %q, ожидалось %q", tc.amount, got, tc.want)
		}
	}
}
