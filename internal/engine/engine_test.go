package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	writes []database.Dataset
	err    error
}

func (s *memoryStore) WriteDataset(_ context.Context, d *database.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, *d)
	return nil
}

func newEngine(t *testing.T, store Store) (Engine, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	d := &database.Dataset{Name: "test", Order: 2, Ranges: []protocol.Range{{Start: 0, Length: 4, Name: "a"}}}
	e, err := NewEngine(d, store, ctx)
	require.NoError(t, err)
	return e, cancel
}

func decode(t *testing.T, b []byte) protocol.Output {
	t.Helper()
	var o protocol.Output
	require.NoError(t, o.Decode(b))
	return o
}

func TestInitialOutput(t *testing.T) {
	e, _ := newEngine(t, nil)

	o := decode(t, <-e.Output())
	assert.Equal(t, "test", o.Name)
	assert.Equal(t, uint8(2), o.Order)
	assert.Equal(t, []protocol.Range{{Start: 0, Length: 4, Name: "a"}}, o.Ranges)
	assert.Equal(t, o, decode(t, e.Snapshot()))
}

func TestNewEngineRejectsInvalidDataset(t *testing.T) {
	_, err := NewEngine(&database.Dataset{Name: "x", Order: 1, Ranges: []protocol.Range{{Start: 2, Length: 3}}}, nil, context.Background())
	assert.ErrorIs(t, err, hilbert.ErrRangeOverflow)

	_, err = NewEngine(&database.Dataset{Name: "x", Order: 40}, nil, context.Background())
	assert.ErrorIs(t, err, hilbert.ErrInvalidOrder)
}

func TestAppendAndSetRanges(t *testing.T) {
	e, _ := newEngine(t, nil)
	<-e.Output()

	require.NoError(t, e.SubmitMessage((&protocol.AppendRanges{Ranges: []protocol.Range{{Start: 4, Length: 12, Name: "b"}}}).Encode()))
	o := decode(t, <-e.Output())
	assert.Len(t, o.Ranges, 2)
	assert.Equal(t, "b", o.Ranges[1].Name)

	require.NoError(t, e.SubmitMessage((&protocol.SetRanges{Ranges: []protocol.Range{{Start: 15, Length: 1}}}).Encode()))
	o = decode(t, <-e.Output())
	assert.Equal(t, []protocol.Range{{Start: 15, Length: 1}}, o.Ranges)
	assert.Equal(t, []protocol.Range{{Start: 15, Length: 1}}, e.Dataset().Ranges)
}

func TestRejectedMessagesKeepState(t *testing.T) {
	e, _ := newEngine(t, nil)
	<-e.Output()

	err := e.SubmitMessage((&protocol.AppendRanges{Ranges: []protocol.Range{{Start: 15, Length: 2}}}).Encode())
	assert.ErrorIs(t, err, hilbert.ErrRangeOverflow)

	err = e.SubmitMessage((&protocol.SetRanges{Ranges: []protocol.Range{{Start: 1, Length: 0}}}).Encode())
	assert.ErrorIs(t, err, hilbert.ErrEmptyRange)

	err = e.SubmitMessage((&protocol.SetOrder{Order: 0}).Encode())
	assert.ErrorIs(t, err, hilbert.ErrRangeOverflow)

	err = e.SubmitMessage((&protocol.SetOrder{Order: 2}).Encode())
	assert.ErrorContains(t, err, "already 2")

	err = e.SubmitMessage([]byte{9})
	assert.ErrorContains(t, err, "decode error")

	assert.Equal(t, 2, e.Dataset().Order)
	assert.Len(t, e.Dataset().Ranges, 1)
	assert.Empty(t, e.Output())
}

func TestFocusIsPublishedOnce(t *testing.T) {
	e, _ := newEngine(t, nil)
	<-e.Output()

	f := protocol.Focus{Start: 5, Length: 3, DurationMs: 400}
	require.NoError(t, e.SubmitMessage(f.Encode()))
	o := decode(t, <-e.Output())
	assert.Equal(t, f, o.Focus)
	assert.Zero(t, decode(t, e.Snapshot()).Focus.Length)

	err := e.SubmitMessage((&protocol.Focus{Start: 10, Length: 7}).Encode())
	assert.ErrorIs(t, err, hilbert.ErrRangeOverflow)
}

func TestSetOrder(t *testing.T) {
	e, _ := newEngine(t, nil)
	<-e.Output()

	require.NoError(t, e.SubmitMessage((&protocol.SetOrder{Order: 5}).Encode()))
	assert.Equal(t, uint8(5), decode(t, <-e.Output()).Order)
}

func TestStartSavesOnShutdown(t *testing.T) {
	store := &memoryStore{}
	e, cancel := newEngine(t, store)
	<-e.Output()

	require.NoError(t, e.SubmitMessage((&protocol.AppendRanges{Ranges: []protocol.Range{{Start: 4, Length: 1}}}).Encode()))
	<-e.Output()

	done := make(chan struct{})
	go func() {
		e.Start()
		close(done)
	}()
	cancel()
	<-done

	_, open := <-e.Output()
	assert.False(t, open)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.writes, 1)
	assert.Len(t, store.writes[0].Ranges, 2)
}

func TestUnchangedDatasetIsNotSaved(t *testing.T) {
	store := &memoryStore{err: errors.New("should not be called")}
	e, cancel := newEngine(t, store)
	cancel()
	e.Start()
	assert.Empty(t, store.writes)
}

func TestSubmitAfterStop(t *testing.T) {
	e, cancel := newEngine(t, nil)
	<-e.Output()
	cancel()
	e.Start()

	assert.NotPanics(t, func() {
		err := e.SubmitMessage((&protocol.Focus{Start: 0, Length: 1}).Encode())
		assert.ErrorIs(t, err, ErrStopped)
	})
	_, open := <-e.Output()
	assert.False(t, open)
}

func TestConcurrentSubmitDuringStop(t *testing.T) {
	e, cancel := newEngine(t, nil)
	done := make(chan struct{})
	go func() {
		e.Start()
		close(done)
	}()
	go func() {
		for range e.Output() {
		}
	}()

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				err := e.SubmitMessage((&protocol.Focus{Start: uint64(i), Length: 1}).Encode())
				if err != nil {
					assert.ErrorIs(t, err, ErrStopped)
				}
			}
		}()
	}
	cancel()
	wg.Wait()
	<-done
}
