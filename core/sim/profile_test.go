package sim

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestPhaseSpeed(t *testing.T) {
	cases := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{24.9, 0},
		{25, 0},
		{55, 60 * math.Sin(math.Pi/4)},
		{120, 60 + 5*math.Sin(10)},
		{250, 30},
		{270, 0},
		{305, 40},
		{327, 0},
		{400, 0},
	}
	for _, c := range cases {
		got := PhaseSpeed(c.t, nil)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("PhaseSpeed(%v) = %v, want %v", c.t, got, c.want)
		}
	}
	if v := PhaseSpeed(55, nil); math.Abs(v-42.43) > 0.01 {
		t.Fatalf("accel phase at 55s = %v", v)
	}
}

func TestPhaseSpeedCruiseJitter(t *testing.T) {
	base := PhaseSpeed(150, nil)
	got := PhaseSpeed(150, func() float64 { return 1.5 })
	if math.Abs(got-base-1.5) > 1e-9 {
		t.Fatalf("jitter not applied: %v vs %v", got, base)
	}
	// jitter only applies while cruising
	if PhaseSpeed(50, func() float64 { return 100 }) != PhaseSpeed(50, nil) {
		t.Fatalf("jitter leaked outside cruise")
	}
}

func TestJitterRange(t *testing.T) {
	p := NewDrivingProfile(rand.New(rand.NewSource(3)))
	for i := 0; i < 1000; i++ {
		j := p.jitter()
		if j < -2 || j >= 2 {
			t.Fatalf("jitter %v out of range", j)
		}
	}
}

func TestScheduleDistinctSorted(t *testing.T) {
	allowed := map[int]bool{60: true, 90: true, 120: true, 150: true, 180: true, 210: true, 240: true}
	for seed := int64(0); seed < 200; seed++ {
		s := NewDrivingProfile(rand.New(rand.NewSource(seed))).Schedule()
		if len(s) != 4 {
			t.Fatalf("seed %d: got %d stoplights", seed, len(s))
		}
		if !sort.IntsAreSorted(s) {
			t.Fatalf("seed %d: unsorted %v", seed, s)
		}
		seen := map[int]bool{}
		for _, v := range s {
			if !allowed[v] || seen[v] {
				t.Fatalf("seed %d: bad schedule %v", seed, s)
			}
			seen[v] = true
		}
	}
}

func TestStoplightActivatesStrictlyAfterThreshold(t *testing.T) {
	p := NewDrivingProfile(rand.New(rand.NewSource(1)))
	inc := 1.0 / 60
	st := NewState(3600, []int{90})
	st.T = 90

	target, stop := p.Target(&st, inc)
	if stop != nil || st.StoplightActive || target == 0 {
		t.Fatalf("stoplight fired at threshold: active=%v target=%v", st.StoplightActive, target)
	}

	st.T = 90 + inc
	target, stop = p.Target(&st, inc)
	if stop == nil || !st.StoplightActive {
		t.Fatalf("stoplight did not fire")
	}
	if target != 0 {
		t.Fatalf("target during stop = %v", target)
	}
	if stop.Threshold != 90 || stop.Duration < 5 || stop.Duration >= 12 {
		t.Fatalf("unexpected stop %+v", stop)
	}
}

func TestStoplightClearsAfterDuration(t *testing.T) {
	p := NewDrivingProfile(rand.New(rand.NewSource(7)))
	inc := 1.0 / 60
	st := NewState(3600, []int{60, 120})
	st.T = 61

	_, stop := p.Target(&st, inc)
	if stop == nil {
		t.Fatalf("expected stop")
	}
	ticks := 1
	for st.StoplightActive {
		st.T += inc
		if target, again := p.Target(&st, inc); again != nil || target != 0 {
			t.Fatalf("active stop must hold zero target without re-firing")
		}
		ticks++
		if ticks > 12*60+1 {
			t.Fatalf("stoplight never cleared")
		}
	}
	want := int(math.Ceil(stop.Duration / inc))
	if ticks < want-1 || ticks > want+1 {
		t.Fatalf("stop lasted %d ticks, want about %d", ticks, want)
	}
	if len(st.Stoplights) != 1 || st.Stoplights[0] != 120 {
		t.Fatalf("queue not popped: %v", st.Stoplights)
	}
}
