package cli

import (
	"context"
	"fmt"
	"strings"
)

// SensitiveSource provides the values the gate protects.
type SensitiveSource interface {
	Balance(ctx context.Context) (string, error)
	CardNumber(ctx context.Context, n int) (string, error)
}

// StaticSource serves fixed values. It stands in for the wallet backend.
type StaticSource struct {
	BalanceValue string
	Cards        []string
}

// DemoSource returns a StaticSource with sample data.
func DemoSource() *StaticSource {
	return &StaticSource{
		BalanceValue: "1 250.40 EUR",
		Cards:        []string{"4111 1111 1111 1111", "5500 0000 0000 0004"},
	}
}

func (s *StaticSource) Balance(context.Context) (string, error) {
	return s.BalanceValue, nil
}

func (s *StaticSource) CardNumber(_ context.Context, n int) (string, error) {
	if n < 1 || n > len(s.Cards) {
		return "", fmt.Errorf("no card %d", n)
	}
	return s.Cards[n-1], nil
}

// mask hides every digit but the last four.
func mask(v string) string {
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	var b strings.Builder
	seen := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			seen++
			if seen <= digits-4 {
				b.WriteRune('•')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
