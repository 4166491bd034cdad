package fuzzy

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tipModel is a two-input toy system: service and food quality drive a tip.
func tipModel(t *testing.T) *Model {
	t.Helper()

	service, err := NewVariable("service", Universe{Min: 0, Max: 10, Step: 1},
		Term{Name: "poor", MF: Trap(0, 0, 2, 5)},
		Term{Name: "good", MF: Trap(5, 8, 10, 10)},
	)
	require.NoError(t, err)

	food, err := NewVariable("food", Universe{Min: 0, Max: 10, Step: 1},
		Term{Name: "bad", MF: Trap(0, 0, 3, 6)},
		Term{Name: "tasty", MF: Trap(4, 7, 10, 10)},
	)
	require.NoError(t, err)

	tip, err := NewVariable("tip", Universe{Min: 0, Max: 30, Step: 1},
		Term{Name: "low", MF: Tri(0, 5, 10)},
		Term{Name: "high", MF: Tri(20, 25, 30)},
	)
	require.NoError(t, err)

	m, err := NewModel(tip, []*Variable{service, food}, []Rule{
		When(Is("service", "poor"), Is("food", "bad")).Conclude("low"),
		When(Is("service", "good")).Conclude("high"),
	})
	require.NoError(t, err)
	return m
}

func TestNewVariable_Validation(t *testing.T) {
	u := Universe{Min: 0, Max: 10, Step: 1}

	_, err := NewVariable("", u, Term{Name: "a", MF: Tri(0, 1, 2)})
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewVariable("x", Universe{Min: 5, Max: 5, Step: 1}, Term{Name: "a", MF: Tri(0, 1, 2)})
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewVariable("x", Universe{Min: 0, Max: 10, Step: 0}, Term{Name: "a", MF: Tri(0, 1, 2)})
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewVariable("x", u)
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewVariable("x", u, Term{Name: "a", MF: Tri(0, 1, 2)}, Term{Name: "a", MF: Tri(2, 3, 4)})
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewVariable("x", u, Term{Name: "a", MF: Tri(3, 1, 2)})
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestUniverse_Points(t *testing.T) {
	u := Universe{Min: 0, Max: 1, Step: 0.01}
	pts := u.Points()

	require.Len(t, pts, 101)
	assert.Equal(t, 0.0, pts[0])
	assert.Equal(t, 1.0, pts[100])
	assert.InDelta(t, 0.5, pts[50], 1e-12)
}

func TestVariable_FuzzifyClamps(t *testing.T) {
	v, err := NewVariable("rain", Universe{Min: 0, Max: 200, Step: 1},
		Term{Name: "extreme", MF: Trap(120, 150, 200, 200)},
	)
	require.NoError(t, err)

	assert.Equal(t, []float64{1}, v.Fuzzify(500))
	assert.Equal(t, []float64{0}, v.Fuzzify(-10))

	term, ok := v.Term("extreme")
	require.True(t, ok)
	assert.Equal(t, "extreme", term.Name)
	_, ok = v.Term("mild")
	assert.False(t, ok)
}

func TestNewModel_RejectsUndefinedReferences(t *testing.T) {
	m := tipModel(t)
	inputs := m.Inputs()
	output := m.Output()

	tests := []struct {
		name string
		rule Rule
		want error
	}{
		{"unknown variable", When(Is("ambience", "nice")).Conclude("high"), ErrUnknownVariable},
		{"unknown antecedent term", When(Is("service", "excellent")).Conclude("high"), ErrUnknownTerm},
		{"unknown consequent term", When(Is("service", "good")).Conclude("generous"), ErrUnknownTerm},
		{"empty antecedent", Rule{Then: "high"}, ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(output, inputs, []Rule{tt.rule})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), "rule 1")
		})
	}
}

func TestModel_Infer(t *testing.T) {
	m := tipModel(t)

	t.Run("single rule high", func(t *testing.T) {
		inf, err := m.Infer(map[string]float64{"service": 9, "food": 9})
		require.NoError(t, err)
		assert.InDelta(t, 25.0, inf.Value, 1e-9)
		assert.Equal(t, 1, inf.Fired)
		assert.Equal(t, 1.0, inf.Activation["high"])
		assert.Equal(t, 0.0, inf.Activation["low"])
	})

	t.Run("single rule low", func(t *testing.T) {
		inf, err := m.Infer(map[string]float64{"service": 1, "food": 1})
		require.NoError(t, err)
		assert.InDelta(t, 5.0, inf.Value, 1e-9)
	})

	t.Run("no rule fires", func(t *testing.T) {
		// service 5 is neither poor nor good; nothing fires.
		_, err := m.Infer(map[string]float64{"service": 5, "food": 1})
		require.ErrorIs(t, err, ErrEmptyOutput)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := m.Infer(map[string]float64{"service": 5})
		require.ErrorIs(t, err, ErrMissingInput)
	})
}

func TestModel_InferConcurrent(t *testing.T) {
	m := tipModel(t)
	want, err := m.Infer(map[string]float64{"service": 3, "food": 2})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inf, err := m.Infer(map[string]float64{"service": 3, "food": 2})
			if err == nil {
				results[i] = inf.Value
			}
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want.Value, got)
	}
}

func TestCentroid(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}

	t.Run("symmetric triangle", func(t *testing.T) {
		c, err := Centroid(x, []float64{0, 0.5, 1, 0.5, 0})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, c, 1e-12)
	})

	t.Run("rectangle", func(t *testing.T) {
		c, err := Centroid(x, []float64{1, 1, 1, 1, 1})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, c, 1e-12)
	})

	t.Run("right weighted", func(t *testing.T) {
		c, err := Centroid(x, []float64{0, 0, 0, 0.5, 1})
		require.NoError(t, err)
		assert.Greater(t, c, 3.0)
	})

	t.Run("zero area", func(t *testing.T) {
		_, err := Centroid(x, make([]float64, len(x)))
		require.ErrorIs(t, err, ErrEmptyOutput)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Centroid(x, []float64{1})
		require.ErrorIs(t, err, ErrInvalidShape)
	})
}

func TestRule_String(t *testing.T) {
	r := When(Is("service", "poor"), Is("food", "bad")).Conclude("low")
	assert.Equal(t, "service=poor AND food=bad -> low", r.String())
}
