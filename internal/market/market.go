// Package market supplies the demand firms expect when they plan and the demand
// they actually meet when the period closes.
package market

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"CreditCycle/internal/calculator"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"
)

// DemandSource is the goods market as seen by firms.
type DemandSource interface {
	// Expected returns the demand firmID plans against this period.
	Expected(firmID int) float64
	// Realise draws this period's demand for each of firms.
	Realise(ctx context.Context, period int, firms []int) (map[int]float64, error)
}

// Config parameterises the stochastic market.
type Config struct {
	Mean   float64 // mean demand per firm
	StdDev float64
	Window int // periods averaged into expectations
	Seed   uint64
}

// Stochastic draws each firm's demand from a normal distribution truncated at
// zero and forms expectations as a moving average of past draws.
type Stochastic struct {
	mu      sync.Mutex
	cfg     Config
	dist    distuv.Normal
	history map[int][]float64
	log     zerolog.Logger
}

// NewStochastic creates a seeded stochastic market. The same seed and the same
// sequence of Realise calls produce the same demand.
func NewStochastic(cfg Config, log zerolog.Logger) *Stochastic {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	return &Stochastic{
		cfg: cfg,
		dist: distuv.Normal{
			Mu:    cfg.Mean,
			Sigma: math.Max(cfg.StdDev, 0),
			Src:   rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15),
		},
		history: make(map[int][]float64),
		log:     log.With().Str("component", "market").Logger(),
	}
}

// Expected returns the moving average of firmID's past demand, or the market
// mean for a firm without history.
func (s *Stochastic) Expected(firmID int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculator.Expectation(s.history[firmID], s.cfg.Window, s.cfg.Mean)
}

// Realise draws demand for firms in the order given.
func (s *Stochastic) Realise(ctx context.Context, period int, firms []int) (map[int]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]float64, len(firms))
	total := 0.0
	for _, id := range firms {
		d := s.draw()
		out[id] = d
		total += d

		h := append(s.history[id], d)
		if len(h) > s.cfg.Window {
			h = h[len(h)-s.cfg.Window:]
		}
		s.history[id] = h
	}

	s.log.Debug().Int("period", period).Int("firms", len(firms)).Float64("total", total).Msg("demand realised")
	return out, nil
}

// Forget drops the history of a firm that has left the market.
func (s *Stochastic) Forget(firmID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, firmID)
}

func (s *Stochastic) draw() float64 {
	if s.dist.Sigma == 0 {
		return math.Max(0, s.cfg.Mean)
	}
	return math.Max(0, s.dist.Rand())
}
