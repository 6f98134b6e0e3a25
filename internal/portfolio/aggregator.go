// Package portfolio rolls reconstructed trades up into summary statistics.
package portfolio

import "github.com/jfeld/wheelhouse/internal/models"

// Aggregate computes the portfolio summary over all trades. The input is
// never mutated.
func Aggregate(trades []models.Trade) models.Summary {
	s := models.Summary{
		ByStrategy: make(map[models.StrategyType]models.StrategyBreakdown),
		ByAccount:  make(map[string]models.AccountBreakdown),
	}

	for i := range trades {
		t := &trades[i]
		s.TotalTrades++
		if t.IsOpen() {
			s.OpenTrades++
		} else {
			s.ClosedTrades++
		}
		s.TotalPremium += t.PremiumReceived
		s.TotalFees += t.TotalFees

		bs := s.ByStrategy[t.Strategy]
		bs.Count++
		bs.Premium += t.PremiumReceived
		s.ByStrategy[t.Strategy] = bs

		ba := s.ByAccount[t.Account]
		ba.Count++
		if t.IsOpen() && t.Shares != 0 {
			invested := t.Shares * t.EntryPrice
			s.TotalInvested += invested
			ba.Invested += invested
		}
		s.ByAccount[t.Account] = ba
	}

	s.NetPremium = s.TotalPremium - s.TotalFees
	return s
}
