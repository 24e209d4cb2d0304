package adjustment

import (
	"math"
	"testing"

	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// firmSpec describes a test firm with unit productivity, so the wage is the
// unit cost.
type firmSpec struct {
	liquid, debt, price, inventories, demand float64
}

func plainMacro() model.Macro {
	return model.Macro{
		Wage:           1,
		RepaymentShare: 0.5,
		MachineSize:    10,
		SupplierPrice:  100, // 10 per capital unit
	}
}

func newFn(t *testing.T, fs firmSpec, m model.Macro) payment.Function {
	t.Helper()
	f := &model.Firm{
		ID:           1,
		LiquidAsset:  model.TwoSlot{Current: fs.liquid},
		Debt:         model.TwoSlot{Current: fs.debt},
		Productivity: 1,
		Price:        fs.price,
		Inventories:  fs.inventories,
	}
	fn, err := payment.New(f, m, fs.demand)
	require.NoError(t, err)
	return fn
}

func testEngine() *Engine {
	return NewEngine(zerolog.Nop())
}

func isMachineMultiple(inv, size float64) bool {
	n := inv / size
	return math.Abs(n-math.Round(n)) < 1e-9
}
