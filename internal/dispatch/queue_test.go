package dispatch

import (
	"sync"
	"testing"
)

func TestQueue_FIFOOrder(t *testing.T) {
	q := NewQueue()

	var got []int
	for i := 0; i < 10; i++ {
		n := i
		q.PushAction(func() {
			got = append(got, n)
		})
	}

	executed := q.DrainOnce(nil)
	if executed != 10 {
		t.Fatalf("DrainOnce = %d, want 10", executed)
	}
	for i, n := range got {
		if n != i {
			t.Errorf("got[%d] = %d, want %d", i, n, i)
		}
	}
}

func TestQueue_ExactlyOnce(t *testing.T) {
	q := NewQueue()

	count := 0
	q.PushAction(func() { count++ })

	q.DrainOnce(nil)
	q.DrainOnce(nil)

	if count != 1 {
		t.Errorf("action ran %d times, want 1", count)
	}
}

func TestQueue_MidDrainEnqueueDeferred(t *testing.T) {
	q := NewQueue()

	var order []string
	q.PushAction(func() {
		order = append(order, "first")
		// Enqueued mid-drain; must not run until the next drain.
		q.PushAction(func() {
			order = append(order, "nested")
		})
	})
	q.PushAction(func() {
		order = append(order, "second")
	})

	if n := q.DrainOnce(nil); n != 2 {
		t.Fatalf("first DrainOnce = %d, want 2", n)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("after first drain order = %v", order)
	}

	if n := q.DrainOnce(nil); n != 1 {
		t.Fatalf("second DrainOnce = %d, want 1", n)
	}
	if order[2] != "nested" {
		t.Errorf("order[2] = %q, want nested", order[2])
	}
}

func TestQueue_LinesToSink(t *testing.T) {
	q := NewQueue()
	q.PushLine("build", StreamStdout, "compiling")
	q.PushLine("build", StreamStderr, "warning: unused")

	var lines []Line
	q.DrainOnce(func(l Line) {
		lines = append(lines, l)
	})

	if len(lines) != 2 {
		t.Fatalf("sink received %d lines, want 2", len(lines))
	}
	if lines[0].Text != "compiling" || lines[0].Stream != StreamStdout {
		t.Errorf("lines[0] = %+v", lines[0])
	}
	if lines[1].Text != "warning: unused" || lines[1].Stream != StreamStderr {
		t.Errorf("lines[1] = %+v", lines[1])
	}
}

func TestQueue_PanicDoesNotStopDrain(t *testing.T) {
	var panics int
	q := NewQueue(WithPanicHandler(func(_ Item, recovered any, _ []byte) {
		panics++
		if recovered != "boom" {
			t.Errorf("recovered = %v, want boom", recovered)
		}
	}))

	ran := false
	q.PushAction(func() { panic("boom") })
	q.PushAction(func() { ran = true })

	q.DrainOnce(nil)

	if panics != 1 {
		t.Errorf("panics = %d, want 1", panics)
	}
	if !ran {
		t.Error("item after panicking item did not run")
	}
	if got := q.Stats().Panicked; got != 1 {
		t.Errorf("Stats().Panicked = %d, want 1", got)
	}
}

func TestQueue_PanickingSink(t *testing.T) {
	var panics int
	q := NewQueue(WithPanicHandler(func(_ Item, _ any, _ []byte) {
		panics++
	}))

	q.PushLine("task", StreamStdout, "a")
	q.PushLine("task", StreamStdout, "b")

	var seen []string
	q.DrainOnce(func(l Line) {
		seen = append(seen, l.Text)
		if l.Text == "a" {
			panic("sink failure")
		}
	})

	if panics != 1 {
		t.Errorf("panics = %d, want 1", panics)
	}
	if len(seen) != 2 {
		t.Errorf("seen = %v, want both lines delivered", seen)
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue()

	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.PushAction(func() {})
			}
		}()
	}
	wg.Wait()

	total := 0
	for q.Len() > 0 {
		total += q.DrainOnce(nil)
	}
	if total != producers*perProducer {
		t.Errorf("drained %d items, want %d", total, producers*perProducer)
	}
}

func TestQueue_NilActionIgnored(t *testing.T) {
	q := NewQueue()
	q.PushAction(nil)
	if q.Len() != 0 {
		t.Errorf("Len = %d after nil push, want 0", q.Len())
	}
}
