package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/aristath/fx-sentinel/internal/cache"
	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/internal/events"
	"github.com/aristath/fx-sentinel/internal/marketdata"
	"github.com/aristath/fx-sentinel/internal/modules/hedging"
	"github.com/aristath/fx-sentinel/internal/modules/risk"
	"github.com/aristath/fx-sentinel/pkg/logger"
)

func main() {
	portfolioPath := flag.String("portfolio", "", "Path to portfolio JSON file")
	marketPath := flag.String("market", "", "Path to market data JSON file (rates and price histories)")
	seed := flag.Int64("seed", 0, "Override the Monte Carlo seed (0 keeps the default)")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	if *portfolioPath == "" || *marketPath == "" {
		fmt.Fprintln(os.Stderr, "usage: riskcli -portfolio portfolio.json -market market.json [-seed N]")
		os.Exit(2)
	}

	log := logger.New(logger.Config{Level: *logLevel, Pretty: true})

	portfolio, err := loadPortfolio(*portfolioPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load portfolio")
	}

	provider := marketdata.NewStaticProvider()
	if err := provider.LoadFile(*marketPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to load market data")
	}

	params := config.DefaultRiskParams()
	if *seed != 0 {
		params.MonteCarloSeed = *seed
	}

	eventManager := events.NewManager(log)
	riskService := risk.NewService(provider, cache.NewMemory(), eventManager, params, log)
	hedgingService := hedging.NewService(params, eventManager, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	outcome, err := riskService.Calculate(ctx, *portfolio)
	if err != nil {
		log.Fatal().Err(err).Msg("Risk assessment failed")
	}

	bundle, err := hedgingService.Recommend(ctx, outcome.Assessment, outcome.Profiles, outcome.Matrix)
	if err != nil {
		log.Fatal().Err(err).Msg("Hedging recommendation failed")
	}

	printAssessment(outcome.Assessment)
	printRecommendations(bundle)
}

func loadPortfolio(path string) (*domain.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var portfolio domain.Portfolio
	if err := json.Unmarshal(data, &portfolio); err != nil {
		return nil, fmt.Errorf("parse portfolio: %w", err)
	}
	if portfolio.BaseCurrency == "" {
		portfolio.BaseCurrency = domain.CurrencyEUR
	}
	return &portfolio, nil
}

func printAssessment(a *domain.RiskAssessment) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("CURRENCY EXPOSURES")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Currency", "Exposure", "Share"})
	for _, e := range a.Exposures {
		t.AppendRow(table.Row{e.Rank, e.Currency, fmt.Sprintf("%.2f", e.AmountBase), fmt.Sprintf("%.1f%%", e.RelativeExposure*100)})
	}
	t.Render()
	fmt.Println()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("VALUE AT RISK")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Method", "Confidence", "VaR"})
	for _, v := range a.VaR {
		t.AppendRow(table.Row{v.Method, fmt.Sprintf("%.0f%%", v.Confidence*100), fmt.Sprintf("%.2f", v.Value)})
	}
	t.Render()
	fmt.Println()

	if len(a.StressTests) > 0 {
		t = table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("STRESS TESTS")
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Scenario", "Loss", "Severity"})
		for _, s := range a.StressTests {
			t.AppendRow(table.Row{s.Scenario, fmt.Sprintf("%.2f", s.TotalLoss), s.Severity})
		}
		t.Render()
		fmt.Println()
	}

	fmt.Printf("Risk score: %.1f / 100\n", a.RiskScore)
	for _, r := range a.Recommendations {
		fmt.Printf("  - %s\n", r)
	}
	fmt.Println()
}

func printRecommendations(bundle *domain.RecommendationBundle) {
	if len(bundle.Strategies) == 0 {
		fmt.Println("No hedging needed.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("HEDGING STRATEGIES")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Rank", "Strategy", "Type", "Currencies", "Ratio", "Cost", "Benefit/Cost", "Score"})
	for i, s := range bundle.Strategies {
		currencies := make([]string, len(s.Currencies))
		for j, c := range s.Currencies {
			currencies[j] = string(c)
		}
		t.AppendRow(table.Row{
			i + 1,
			s.ID,
			s.Type,
			strings.Join(currencies, ","),
			fmt.Sprintf("%.0f%%", s.HedgeRatio*100),
			fmt.Sprintf("%.2f", s.Analysis.TotalCost),
			fmt.Sprintf("%.2f", s.Analysis.BenefitCostRatio),
			fmt.Sprintf("%.3f", s.RankScore),
		})
	}
	t.Render()
	fmt.Println()

	if bundle.Plan != nil {
		fmt.Printf("Implementation plan for %s:\n", bundle.Plan.StrategyID)
		for _, phase := range bundle.Plan.Phases {
			fmt.Printf("  %s (%d days)\n", phase.Name, phase.DurationDays)
			for _, task := range phase.Tasks {
				fmt.Printf("    - %s\n", task)
			}
		}
	}
}
