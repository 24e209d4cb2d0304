package adjustment

import (
	"math"
	"math/rand/v2"
	"testing"

	"CreditCycle/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPrioriPayableWithoutCredit(t *testing.T) {
	m := plainMacro()
	m.TaxRate, m.DepositRate, m.DebtRate, m.RepaymentShare = 0.2, 0.01, 0.05, 0.1
	fn := newFn(t, firmSpec{liquid: 1000, price: 2, demand: 200}, m)

	got := testEngine().APriori(fn, model.Plan{Production: 150}, 80)

	assert.True(t, got.Feasible)
	assert.Equal(t, Done, got.Stage)
	assert.Equal(t, EntryNone, got.Entry)
	assert.Zero(t, got.CreditDemand)
	assert.InDelta(t, 150.0, got.Plan.Production, 1e-9)
}

func TestAPrioriAsksOnlyForWhatItNeeds(t *testing.T) {
	m := plainMacro()
	m.TaxRate, m.DepositRate, m.DebtRate, m.RepaymentShare = 0.2, 0.01, 0.05, 0.1
	fn := newFn(t, firmSpec{liquid: 100, price: 2, demand: 200}, m)

	got := testEngine().APriori(fn, model.Plan{Production: 150}, 80)

	require.True(t, got.Feasible)
	assert.InDelta(t, 150.0, got.Plan.Production, 1e-9)
	assert.InDelta(t, 50.0, got.Split.ForProductionAndInvestment, 1e-9)
	assert.Zero(t, got.Split.ForDebtRepayment)
	assert.InDelta(t, 50.0, got.CreditDemand, 1e-9)
	assert.InDelta(t, 233.0, got.Payment, 1e-9)
}

func TestAPrioriRolloverCoversShortfall(t *testing.T) {
	fn := newFn(t, firmSpec{liquid: 1000, debt: 2400, price: 2, demand: 100}, plainMacro())

	got := testEngine().APriori(fn, model.Plan{Production: 100}, 500)

	require.True(t, got.Feasible)
	assert.Equal(t, Done, got.Stage)
	assert.InDelta(t, 100.0, got.Plan.Production, 1e-9)
	assert.Zero(t, got.Split.ForProductionAndInvestment)
	assert.InDelta(t, 200.0, got.Split.ForDebtRepayment, 1e-9)
	assert.InDelta(t, 200.0, got.CreditDemand, 1e-9)
	assert.InDelta(t, 0.0, got.Payment, 1e-9)
}

func TestAPrioriStages(t *testing.T) {
	tests := []struct {
		name    string
		firm    firmSpec
		desired model.Plan
		stage   Stage
		want    model.Plan
	}{
		{
			name:    "substitutionary investment trimmed",
			firm:    firmSpec{liquid: 1000, debt: 1000, price: 2, demand: 100},
			desired: model.Plan{Production: 100, InvestmentSubstitutionary: 80},
			stage:   SubInvestment,
			want:    model.Plan{Production: 100, InvestmentSubstitutionary: 60},
		},
		{
			name:    "substitutionary root floored to a machine",
			firm:    firmSpec{liquid: 1000, debt: 1005, price: 2, demand: 100},
			desired: model.Plan{Production: 100, InvestmentSubstitutionary: 80},
			stage:   SubInvestment,
			want:    model.Plan{Production: 100, InvestmentSubstitutionary: 50},
		},
		{
			name:    "earlier stages untouched once resolved",
			firm:    firmSpec{liquid: 2000, debt: 2000, price: 2, demand: 100},
			desired: model.Plan{Production: 100, InvestmentExpansionary: 50, InvestmentSubstitutionary: 80},
			stage:   SubInvestment,
			want:    model.Plan{Production: 100, InvestmentExpansionary: 50, InvestmentSubstitutionary: 60},
		},
		{
			name:    "expansionary investment trimmed",
			firm:    firmSpec{liquid: 2000, debt: 3400, price: 2, demand: 100},
			desired: model.Plan{Production: 100, InvestmentExpansionary: 50, InvestmentSubstitutionary: 80},
			stage:   ExpInvestment,
			want:    model.Plan{Production: 100, InvestmentExpansionary: 40},
		},
		{
			name:    "inventory build-up trimmed",
			firm:    firmSpec{liquid: 1000, debt: 2160, price: 2, demand: 100},
			desired: model.Plan{Production: 150},
			stage:   Inventory,
			want:    model.Plan{Production: 120},
		},
		{
			name:    "production cut below demand",
			firm:    firmSpec{liquid: 1000, debt: 1960, price: 0.5, demand: 100},
			desired: model.Plan{Production: 100},
			stage:   Production,
			want:    model.Plan{Production: 40},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := newFn(t, tt.firm, plainMacro())
			got := testEngine().APriori(fn, tt.desired, 0)

			require.True(t, got.Feasible)
			assert.Equal(t, tt.stage, got.Stage)
			assert.Equal(t, EntryPositiveLiquidAsset, got.Entry)
			assert.InDelta(t, tt.want.Production, got.Plan.Production, 1e-9)
			assert.InDelta(t, tt.want.InvestmentExpansionary, got.Plan.InvestmentExpansionary, 1e-9)
			assert.InDelta(t, tt.want.InvestmentSubstitutionary, got.Plan.InvestmentSubstitutionary, 1e-9)
			assert.GreaterOrEqual(t, got.Payment, -1e-9)
			assert.Zero(t, got.CreditDemand)
		})
	}
}

func TestAPrioriQuantisedRootStaysPayable(t *testing.T) {
	fn := newFn(t, firmSpec{liquid: 1000, debt: 1005, price: 2, demand: 100}, plainMacro())
	got := testEngine().APriori(fn, model.Plan{Production: 100, InvestmentSubstitutionary: 80}, 0)

	require.True(t, got.Feasible)
	assert.InDelta(t, 97.5, got.Payment, 1e-9)

	oneMore := got.Plan
	oneMore.InvestmentSubstitutionary += fn.MachineSize()
	assert.Less(t, fn.EvaluatePlan(oneMore, got.Split), 0.0)
}

func TestAPrioriNilLiquidAsset(t *testing.T) {
	t.Run("root above the kink", func(t *testing.T) {
		m := plainMacro()
		m.MachineSize, m.SupplierPrice = 5, 50
		fn := newFn(t, firmSpec{liquid: 100, debt: 200, price: 2, demand: 50}, m)

		got := testEngine().APriori(fn, model.Plan{Production: 50, InvestmentSubstitutionary: 20}, 200)

		require.True(t, got.Feasible)
		assert.Equal(t, EntryNilLiquidAsset, got.Entry)
		assert.Equal(t, SubInvestment, got.Stage)
		assert.InDelta(t, 15.0, got.Plan.InvestmentSubstitutionary, 1e-9)
		assert.InDelta(t, 100.0, got.Split.ForProductionAndInvestment, 1e-9)
		assert.InDelta(t, 100.0, got.Split.ForDebtRepayment, 1e-9)
		assert.InDelta(t, 200.0, got.CreditDemand, 1e-9)
		assert.InDelta(t, 0.0, got.Payment, 1e-9)
	})

	t.Run("root below the kink", func(t *testing.T) {
		m := plainMacro()
		m.DepositRate = 0.1
		m.MachineSize, m.SupplierPrice = 1, 10
		fn := newFn(t, firmSpec{liquid: 100, debt: 440, price: 2, demand: 50}, m)

		got := testEngine().APriori(fn, model.Plan{Production: 50, InvestmentSubstitutionary: 20}, 200)

		require.True(t, got.Feasible)
		assert.Equal(t, EntryNilLiquidAsset, got.Entry)
		assert.Equal(t, SubInvestment, got.Stage)
		assert.InDelta(t, 3.0, got.Plan.InvestmentSubstitutionary, 1e-9)
		assert.Zero(t, got.Split.ForProductionAndInvestment)
		assert.InDelta(t, 200.0, got.Split.ForDebtRepayment, 1e-9)
		assert.InDelta(t, 2.0, got.Payment, 1e-9)
	})

	// Full amortisation plus interest makes every unit of rollover cost more
	// than it refinances.
	costlyRollover := func() model.Macro {
		m := plainMacro()
		m.RepaymentShare, m.DebtRate = 1, 0.05
		m.MachineSize, m.SupplierPrice = 5, 50
		return m
	}

	t.Run("costly rollover root above the kink", func(t *testing.T) {
		fn := newFn(t, firmSpec{liquid: 100, debt: 10, price: 2, demand: 50}, costlyRollover())
		require.Less(t, fn.RolloverGain(), 0.0)

		got := testEngine().APriori(fn, model.Plan{Production: 50, InvestmentSubstitutionary: 20}, 200)

		// Payment at the kink (5 units) is 89.5; the loan-funded root is 5 + 89.5/10.5, floored to 10.
		require.True(t, got.Feasible)
		assert.Equal(t, EntryNilLiquidAsset, got.Entry)
		assert.Equal(t, SubInvestment, got.Stage)
		assert.InDelta(t, 10.0, got.Plan.InvestmentSubstitutionary, 1e-9)
		assert.InDelta(t, 50.0, got.Split.ForProductionAndInvestment, 1e-9)
		assert.Zero(t, got.Split.ForDebtRepayment)
		assert.InDelta(t, 50.0, got.CreditDemand, 1e-9)
		assert.Less(t, got.CreditDemand, 200.0)
		assert.InDelta(t, 37.0, got.Payment, 1e-9)

		oneMore := got.Plan
		oneMore.InvestmentSubstitutionary += fn.MachineSize()
		split := model.LoanSplit{ForProductionAndInvestment: fn.PlanCost(oneMore) - fn.LiquidAsset()}
		assert.Less(t, fn.EvaluatePlan(oneMore, split), 0.0)
	})

	t.Run("costly rollover root below the kink", func(t *testing.T) {
		m := costlyRollover()
		m.MachineSize, m.SupplierPrice = 1, 10
		fn := newFn(t, firmSpec{liquid: 100, debt: 120, price: 2, demand: 50}, m)

		got := testEngine().APriori(fn, model.Plan{Production: 50, InvestmentSubstitutionary: 20}, 200)

		// Payment at the kink (5 machines) is -26; the internal root is 2.4.
		require.True(t, got.Feasible)
		assert.Equal(t, EntryNilLiquidAsset, got.Entry)
		assert.Equal(t, SubInvestment, got.Stage)
		assert.InDelta(t, 2.0, got.Plan.InvestmentSubstitutionary, 1e-9)
		assert.Zero(t, got.Split.Total())
		assert.Zero(t, got.CreditDemand)
		assert.InDelta(t, 4.0, got.Payment, 1e-9)
	})

	t.Run("costly rollover production cut on the loan segment", func(t *testing.T) {
		fn := newFn(t, firmSpec{liquid: 100, debt: 40, price: 0.5, demand: 150}, costlyRollover())

		got := testEngine().APriori(fn, model.Plan{Production: 150}, 200)

		// Above the kink at q = 100 payment is 63 - 0.55q.
		want := 63 / 0.55
		require.True(t, got.Feasible)
		assert.Equal(t, EntryNilLiquidAsset, got.Entry)
		assert.Equal(t, Production, got.Stage)
		assert.InDelta(t, want, got.Plan.Production, 1e-9)
		assert.InDelta(t, want-100, got.Split.ForProductionAndInvestment, 1e-9)
		assert.Zero(t, got.Split.ForDebtRepayment)
		assert.InDelta(t, want-100, got.CreditDemand, 1e-9)
		assert.InDelta(t, 0.0, got.Payment, 1e-9)
	})
}

func TestAPrioriFailure(t *testing.T) {
	t.Run("payment falls with output", func(t *testing.T) {
		fn := newFn(t, firmSpec{liquid: 1000, debt: 2400, price: 0.5, demand: 100}, plainMacro())

		got := testEngine().APriori(fn, model.Plan{Production: 100}, 300)

		assert.False(t, got.Feasible)
		assert.Equal(t, Done, got.Stage)
		assert.Zero(t, got.CreditDemand)
		assert.Zero(t, got.Split.Total())
		assert.Zero(t, got.Plan.Production)
		assert.Zero(t, got.Plan.Investment())
	})

	t.Run("payment rises with output", func(t *testing.T) {
		fn := newFn(t, firmSpec{liquid: 1000, debt: 2500, price: 3, demand: 100}, plainMacro())

		got := testEngine().APriori(fn, model.Plan{Production: 100}, 0)

		assert.False(t, got.Feasible)
		assert.Zero(t, got.CreditDemand)
		assert.InDelta(t, 100.0, got.Plan.Production, 1e-9)
	})
}

func TestAPrioriRandomFirms(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	en := testEngine()

	for i := 0; i < 500; i++ {
		m := model.Macro{
			Wage:           0.5 + rng.Float64(),
			TaxRate:        0.3 * rng.Float64(),
			DepositRate:    0.05 * rng.Float64(),
			DebtRate:       0.1 * rng.Float64(),
			RepaymentShare: 0.05 + 0.95*rng.Float64(),
			MachineSize:    5,
			SupplierPrice:  50,
		}
		f := firmSpec{
			liquid:      2000 * rng.Float64(),
			debt:        5000 * rng.Float64(),
			price:       0.5 + 2.5*rng.Float64(),
			inventories: 100 * rng.Float64(),
			demand:      300 * rng.Float64(),
		}
		desired := model.Plan{
			Production:                300 * rng.Float64(),
			InvestmentExpansionary:    float64(rng.IntN(10)) * 5,
			InvestmentSubstitutionary: float64(rng.IntN(10)) * 5,
		}
		ceiling := 1000 * rng.Float64()
		fn := newFn(t, f, m)

		got := en.APriori(fn, desired, ceiling)
		clamped := feasibility(fn, desired, fn.LiquidAsset()+ceiling)

		assert.True(t, isMachineMultiple(got.Plan.InvestmentExpansionary, 5), "firm %d", i)
		assert.True(t, isMachineMultiple(got.Plan.InvestmentSubstitutionary, 5), "firm %d", i)
		assert.GreaterOrEqual(t, got.Plan.Production, 0.0, "firm %d", i)
		assert.LessOrEqual(t, fn.PlanCost(got.Plan), fn.LiquidAsset()+ceiling+1e-6, "firm %d", i)
		assert.LessOrEqual(t, got.CreditDemand, ceiling+1e-6, "firm %d", i)
		assert.InDelta(t, got.Split.Total(), got.CreditDemand, 1e-9, "firm %d", i)

		if !got.Feasible {
			assert.Zero(t, got.CreditDemand, "firm %d", i)
			continue
		}
		assert.GreaterOrEqual(t, got.Payment, -1e-6, "firm %d", i)
		if got.Entry != EntryNone {
			if fn.RolloverGain() > 0 {
				assert.InDelta(t, ceiling, got.Split.Total(), 1e-6, "firm %d", i)
			} else {
				assert.Zero(t, got.Split.ForDebtRepayment, "firm %d", i)
				assert.InDelta(t, got.Split.ForProductionAndInvestment, math.Max(0, fn.PlanCost(got.Plan)-fn.LiquidAsset()), 1e-6, "firm %d", i)
			}
		}

		switch got.Stage {
		case SubInvestment:
			assert.InDelta(t, clamped.Production, got.Plan.Production, 1e-9, "firm %d", i)
			assert.InDelta(t, clamped.InvestmentExpansionary, got.Plan.InvestmentExpansionary, 1e-9, "firm %d", i)
		case ExpInvestment:
			assert.Zero(t, got.Plan.InvestmentSubstitutionary, "firm %d", i)
			assert.InDelta(t, clamped.Production, got.Plan.Production, 1e-9, "firm %d", i)
		case Inventory:
			assert.Zero(t, got.Plan.Investment(), "firm %d", i)
			assert.GreaterOrEqual(t, got.Plan.Production, fn.InventoryNeutral()-1e-9, "firm %d", i)
		case Production:
			assert.Zero(t, got.Plan.Investment(), "firm %d", i)
			assert.LessOrEqual(t, got.Plan.Production, fn.InventoryNeutral()+1e-9, "firm %d", i)
		}
	}
}
