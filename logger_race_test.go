package gourdianringlog

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceProducersAndFlusher(t *testing.T) {
	config := DefaultConfig()
	config.Capacity = 16

	var dispatched atomic.Int64
	logger, err := New(config, WithClock(SystemClock()), WithDisplay(SinkFunc(func(string) error {
		dispatched.Add(1)
		return nil
	})))
	require.NoError(t, err)

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	done := make(chan struct{})

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				logger.Record(Subsystem(p%int(numSubsystems)), INFO, fmt.Sprintf("p%d-%d", p, i), i%2 == 0)
			}
		}(p)
	}

	flushed := make(chan int64)
	go func() {
		var total int64
		for {
			select {
			case <-done:
				total += int64(logger.Flush())
				flushed <- total
				return
			default:
				total += int64(logger.Flush())
				time.Sleep(time.Millisecond)
			}
		}
	}()

	wg.Wait()
	close(done)

	var total int64
	select {
	case total = <-flushed:
	case <-time.After(5 * time.Second):
		t.Fatal("flusher did not finish")
	}

	stats := logger.Stats()
	assert.Equal(t, uint64(producers*perProducer), stats.Admitted)
	assert.Equal(t, stats.Admitted-stats.Overwritten, uint64(total))
	assert.Equal(t, total, dispatched.Load())
	assert.Equal(t, 0, logger.Pending())
}

func TestRaceConcurrentFlushKeepsOrder(t *testing.T) {
	config := DefaultConfig()
	config.Capacity = 4096

	var mu sync.Mutex
	var lines []string
	logger, err := New(config, WithDisplay(SinkFunc(func(line string) error {
		// Widen the window between pop and dispatch.
		time.Sleep(10 * time.Microsecond)
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
		return nil
	})))
	require.NoError(t, err)

	const records = 2000
	const flushers = 4

	var wg sync.WaitGroup
	wg.Add(1 + flushers)
	produced := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(produced)
		for i := 0; i < records; i++ {
			logger.Record(CORE, INFO, strconv.Itoa(i), false)
		}
	}()
	for f := 0; f < flushers; f++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-produced:
					logger.Flush()
					return
				default:
					logger.Flush()
				}
			}
		}()
	}
	wg.Wait()
	logger.Flush()

	require.Len(t, lines, records)
	for i, line := range lines {
		text := strings.TrimSuffix(strings.TrimPrefix(line, "[INFO]\tCORE:\t"), "\r\n")
		require.Equal(t, strconv.Itoa(i), text, "line %d out of order", i)
	}
}

func TestRaceThresholdChangesDuringRecord(t *testing.T) {
	logger, err := NewDefault()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				logger.DisableAll()
			} else {
				logger.EnableAll()
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			logger.Record(CORE, DEBUG, "toggle", false)
		}
	}()
	wg.Wait()

	stats := logger.Stats()
	assert.Equal(t, uint64(1000), stats.Admitted+stats.Filtered)
	assert.LessOrEqual(t, logger.Pending(), logger.Capacity())
}
