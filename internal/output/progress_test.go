package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestProgressBar_NonTTYWritesOneLinePerStep(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(2, "a.csv")
	p.SetWriter(buf)

	p.Increment()
	p.SetDescription("b.csv")
	p.Increment()
	p.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], " 50% a.csv") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "100% b.csv") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestProgressBar_Render(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(4, "Importing")
	p.SetWriter(buf)
	p.width = 8

	p.Increment()
	if got := strings.TrimSpace(buf.String()); got != "[=>      ]  25% Importing" {
		t.Errorf("render = %q", got)
	}
}

func TestProgressBar_OverLimit(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(1, "x")
	p.SetWriter(buf)

	p.Increment()
	p.Increment()

	if p.current != 1 {
		t.Errorf("current = %d, want capped at 1", p.current)
	}
}

func TestProgressBar_FinishEarly(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(3, "x")
	p.SetWriter(buf)

	p.Increment()
	p.Finish()

	if !strings.HasSuffix(buf.String(), "100% x\n") {
		t.Errorf("Finish() output = %q", buf.String())
	}
}

func TestProgressBar_Concurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(100, "x")
	p.SetWriter(buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				p.Increment()
			}
		}()
	}
	wg.Wait()

	if p.current != 100 {
		t.Errorf("current = %d, want 100", p.current)
	}
}

func TestSpinner_NonTTY(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Mining groceries")
	s.SetWriter(buf)

	s.Start()
	s.Start()
	s.UpdateMessage("ignored on non-tty")
	s.StopWithMessage("done")
	s.Stop()

	if got := buf.String(); got != "Mining groceries...\ndone\n" {
		t.Errorf("spinner output = %q", got)
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	s := NewSpinner("x")
	s.SetWriter(&bytes.Buffer{})
	s.Stop()
}
