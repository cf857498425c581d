package progress

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_ConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker("Indexing Java sources", 100, Quiet(true), WithWriter(&buf))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Tick()
		}()
	}
	wg.Wait()
	tr.FinishSuccess()

	assert.Zero(t, buf.Len(), "quiet wins over an explicit writer")
}

func TestTracker_FinishSkipped(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker("Indexing Java sources", 3, WithWriter(&buf))
	tr.Tick()
	tr.FinishSkipped(2, "parse errors")
	assert.Contains(t, buf.String(), "Indexing Java sources: 2 skipped (parse errors)")

	buf.Reset()
	tr = NewTracker("Scanning templates", 1, WithWriter(&buf))
	tr.FinishSkipped(0, "parse errors")
	assert.NotContains(t, buf.String(), "skipped")
}

func TestTracker_FinishError(t *testing.T) {
	var buf bytes.Buffer
	tr := NewSpinner("Walking project", WithWriter(&buf))
	tr.Tick()
	tr.FinishError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Walking project error: boom")
}
