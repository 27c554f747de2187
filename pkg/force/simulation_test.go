package force

import (
	"context"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

func nan() float64 { return math.NaN() }

func TestNewPlacesUnpositionedNodes(t *testing.T) {
	nodes := []*Node{
		{X: nan(), Y: nan()},
		{X: nan(), Y: nan()},
		{X: 3, Y: 4},
	}
	New(nodes)

	for i, n := range nodes {
		if n.Index != i {
			t.Errorf("node %d: Index = %d", i, n.Index)
		}
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			t.Errorf("node %d: not placed", i)
		}
	}
	if nodes[0].X == nodes[1].X && nodes[0].Y == nodes[1].Y {
		t.Error("spiral placed two nodes at the same point")
	}
	if nodes[2].X != 3 || nodes[2].Y != 4 {
		t.Errorf("positioned node moved to %v,%v", nodes[2].X, nodes[2].Y)
	}
}

func TestZeroNodes(t *testing.T) {
	sim := New(nil)
	if err := sim.SetForce("collide", NewCollide(Radius)); err != nil {
		t.Fatalf("SetForce: %v", err)
	}

	ticks, err := sim.Converge(0.1)
	if err != nil {
		t.Fatalf("Converge: %v", err)
	}
	if ticks != 0 {
		t.Errorf("ticks = %d, want 0", ticks)
	}

	sim.Tick()
	if sim.Ticks() != 0 || sim.Alpha() != 1 {
		t.Errorf("Tick changed state: ticks=%d alpha=%v", sim.Ticks(), sim.Alpha())
	}

	ended := 0
	sim.OnEnd(func(*Simulation) { ended++ })
	if sim.Step() {
		t.Error("Step reported running with no nodes")
	}
	if ended != 1 {
		t.Errorf("end listeners fired %d times, want 1", ended)
	}
}

func TestConvergeRejectsUnreachableThreshold(t *testing.T) {
	tests := []struct {
		name      string
		target    float64
		threshold float64
		wantErr   bool
	}{
		{"target below threshold", 0, 0.1, false},
		{"target equals threshold", 0.1, 0.1, true},
		{"target above threshold", 0.3, 0.1, true},
		{"zero threshold", 0, 0, true},
		{"negative threshold", 0, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New([]*Node{{}})
			if err := sim.SetAlphaTarget(tt.target); err != nil {
				t.Fatalf("SetAlphaTarget: %v", err)
			}
			_, err := sim.Converge(tt.threshold)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Converge error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("code = %s, want INVALID_ARGUMENT", errors.GetCode(err))
			}
		})
	}
}

func TestConvergeStopsBelowThreshold(t *testing.T) {
	sim := New([]*Node{{}})
	ticks, err := sim.Converge(0.05)
	if err != nil {
		t.Fatalf("Converge: %v", err)
	}
	if sim.Alpha() >= 0.05 {
		t.Errorf("alpha = %v, want < 0.05", sim.Alpha())
	}
	// alpha after n ticks is 0.001^(n/300)
	if ticks != 131 {
		t.Errorf("ticks = %d, want 131", ticks)
	}

	again, err := sim.Converge(0.05)
	if err != nil || again != 0 {
		t.Errorf("second Converge = %d, %v; want 0, nil", again, err)
	}
}

func TestDirectionalConverges(t *testing.T) {
	nodes := []*Node{{X: 0, Y: 0}}
	sim := New(nodes)
	if err := sim.SetForce("x", X(100)); err != nil {
		t.Fatal(err)
	}
	if err := sim.SetForce("y", Y(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Converge(0.01); err != nil {
		t.Fatal(err)
	}

	n := nodes[0]
	if math.Abs(n.X-100) > 0.1 || math.Abs(n.Y-100) > 0.1 {
		t.Errorf("node at %v,%v; want 100,100", n.X, n.Y)
	}
}

func TestDirectionalRejectsNonFiniteTarget(t *testing.T) {
	sim := New([]*Node{{}, {}})
	target := func(n *Node) float64 {
		if n.Index == 1 {
			return math.NaN()
		}
		return 0
	}
	err := sim.SetForce("x", XFunc(target))
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
	}
	if sim.Force("x") != nil {
		t.Error("failed force was installed")
	}
}

func TestFixedNodeStays(t *testing.T) {
	n := &Node{}
	n.Fix(5, 5)
	sim := New([]*Node{n})
	if err := sim.SetForce("x", X(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Converge(0.1); err != nil {
		t.Fatal(err)
	}
	if n.X != 5 || n.Y != 5 || n.VX != 0 {
		t.Errorf("fixed node at %v,%v v=%v", n.X, n.Y, n.VX)
	}

	n.Unfix()
	sim.Restart()
	if _, err := sim.Converge(0.1); err != nil {
		t.Fatal(err)
	}
	if n.X <= 5 {
		t.Errorf("released node did not move toward target: x=%v", n.X)
	}
}

func TestSetForceReplacesInPlace(t *testing.T) {
	sim := New([]*Node{{}})
	first := X(0)
	replacement := X(50)
	for _, step := range []struct {
		name string
		f    Force
	}{
		{"x", first},
		{"y", Y(0)},
		{"x", replacement},
	} {
		if err := sim.SetForce(step.name, step.f); err != nil {
			t.Fatal(err)
		}
	}

	if got, want := sim.ForceNames(), []string{"x", "y"}; !slices.Equal(got, want) {
		t.Errorf("ForceNames = %v, want %v", got, want)
	}
	if sim.Force("x") != Force(replacement) {
		t.Error("slot x does not hold the replacement")
	}

	sim.RemoveForce("x")
	if got := sim.ForceNames(); !slices.Equal(got, []string{"y"}) {
		t.Errorf("after remove ForceNames = %v", got)
	}
}

func TestStepListeners(t *testing.T) {
	sim := New([]*Node{{}}, WithAlphaMin(0.5))
	ticks, ends := 0, 0
	sim.OnTick(func(*Simulation) { ticks++ })
	sim.OnEnd(func(*Simulation) { ends++ })

	for sim.Step() {
	}
	if ends != 1 {
		t.Errorf("end fired %d times, want 1", ends)
	}
	if ticks != sim.Ticks() {
		t.Errorf("tick listener fired %d times for %d ticks", ticks, sim.Ticks())
	}
	if sim.Running() {
		t.Error("simulation still running")
	}
	if sim.Step() {
		t.Error("Step on a stopped simulation reported running")
	}

	sim.Restart()
	if sim.Alpha() != 1 || !sim.Running() {
		t.Errorf("Restart: alpha=%v running=%v", sim.Alpha(), sim.Running())
	}
}

func TestAlphaTargetKeepsRunning(t *testing.T) {
	sim := New([]*Node{{}})
	if err := sim.SetAlphaTarget(0.25); err != nil {
		t.Fatal(err)
	}
	for range 1000 {
		if !sim.Step() {
			t.Fatal("simulation cooled despite alpha target")
		}
	}
	if math.Abs(sim.Alpha()-0.25) > 1e-6 {
		t.Errorf("alpha = %v, want ~0.25", sim.Alpha())
	}
}

func TestSetAlphaValidation(t *testing.T) {
	sim := New(nil)
	for _, v := range []float64{-0.1, 1.5, math.NaN()} {
		if err := sim.SetAlpha(v); err == nil {
			t.Errorf("SetAlpha(%v) accepted", v)
		}
		if err := sim.SetAlphaTarget(v); err == nil {
			t.Errorf("SetAlphaTarget(%v) accepted", v)
		}
	}
}

func TestRunCompletes(t *testing.T) {
	sim := New([]*Node{{}}, WithAlphaMin(0.9))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sim.Run(ctx, time.Millisecond); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sim.Running() {
		t.Error("still running after Run returned")
	}
}

func TestRunCanceled(t *testing.T) {
	sim := New([]*Node{{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sim.Run(ctx, time.Hour); err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}
