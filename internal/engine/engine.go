package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
)

const (
	saveInterval = 2 * time.Second
	saveTimeout  = 5 * time.Second
)

// ErrStopped is returned for messages that arrive after Start returned.
var ErrStopped = errors.New("engine stopped")

// Store persists datasets.
type Store interface {
	WriteDataset(ctx context.Context, d *database.Dataset) error
}

// Engine owns one live dataset. Messages from viewers change it and every
// change is published as an encoded protocol.Output.
type Engine interface {
	Name() string
	Dataset() database.Dataset
	Output() <-chan []byte
	// Snapshot returns the encoded current state without a focus request.
	Snapshot() []byte
	Start()
	SubmitMessage(b []byte) error
}

type engine struct {
	ctx          context.Context
	store        Store
	mutex        sync.Mutex
	stopped      bool
	dataset      database.Dataset
	dirty        atomic.Bool
	output       protocol.Output
	outputChan   chan []byte
	encodeBuffer []byte
	snapshot     atomic.Pointer[[]byte]
}

func NewEngine(d *database.Dataset, store Store, ctx context.Context) (Engine, error) {
	if err := Validate(d.Order, d.Ranges); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
	}
	e := &engine{
		ctx:        ctx,
		store:      store,
		dataset:    database.Dataset{Name: d.Name, Order: d.Order, Ranges: slices.Clone(d.Ranges)},
		outputChan: make(chan []byte, 2),
	}
	e.generateOutput(protocol.Focus{})
	return e, nil
}

func (e *engine) Name() string {
	return e.dataset.Name
}

func (e *engine) Dataset() database.Dataset {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	d := e.dataset
	d.Ranges = slices.Clone(d.Ranges)
	return d
}

func (e *engine) Output() <-chan []byte {
	return e.outputChan
}

func (e *engine) Snapshot() []byte {
	return *e.snapshot.Load()
}

// Start saves the dataset periodically while it changes and once more when
// the context ends.
func (e *engine) Start() {
	ticker := time.NewTicker(saveInterval)
	defer func() {
		ticker.Stop()
		e.mutex.Lock()
		e.stopped = true
		close(e.outputChan)
		e.mutex.Unlock()
	}()

	for {
		select {
		case <-e.ctx.Done():
			e.save()
			return
		case <-ticker.C:
			e.save()
		}
	}
}

func (e *engine) SubmitMessage(b []byte) error {
	if e.isStopped() {
		return ErrStopped
	}
	msg, err := protocol.DecodeClientMessage(b)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}

	var focus protocol.Focus
	switch t := msg.(type) {
	case *protocol.SetRanges:
		err = e.handleSetRanges(t)
	case *protocol.AppendRanges:
		err = e.handleAppendRanges(t)
	case *protocol.Focus:
		err = e.handleFocus(t)
		focus = *t
	case *protocol.SetOrder:
		err = e.handleSetOrder(t)
	}

	if err != nil {
		return fmt.Errorf("handle message error: %w", err)
	}

	e.generateOutput(focus)

	return nil
}

func (e *engine) isStopped() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.stopped
}

func (e *engine) save() {
	if e.store == nil || !e.dirty.Swap(false) {
		return
	}
	d := e.Dataset()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.ctx), saveTimeout)
	defer cancel()
	if err := e.store.WriteDataset(ctx, &d); err != nil {
		e.dirty.Store(true)
		log.Printf("could not save dataset %s: %s", d.Name, err)
	}
}

func (e *engine) generateOutput(focus protocol.Focus) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.output.Name = e.dataset.Name
	e.output.Order = uint8(e.dataset.Order)
	e.output.Ranges = e.dataset.Ranges
	e.output.RangesCount = uint32(len(e.dataset.Ranges))

	e.output.Focus = protocol.Focus{}
	snapshot := e.encode()
	e.snapshot.Store(&snapshot)

	out := snapshot
	if focus.Length > 0 {
		e.output.Focus = focus
		out = e.encode()
	}

	if e.stopped {
		return
	}
	select {
	case e.outputChan <- out:
	default:
		log.Printf("output of %s dropped", e.output.Name)
	}
}

func (e *engine) encode() []byte {
	encodeSize := e.output.EncodeSize()
	if cap(e.encodeBuffer) < encodeSize {
		e.encodeBuffer = make([]byte, encodeSize)
	}
	e.encodeBuffer = e.encodeBuffer[:encodeSize]
	e.output.Encode(e.encodeBuffer)
	return append([]byte(nil), e.encodeBuffer...)
}

func (e *engine) handleSetRanges(sr *protocol.SetRanges) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if err := Validate(e.dataset.Order, sr.Ranges); err != nil {
		return err
	}
	e.dataset.Ranges = sr.Ranges
	e.dirty.Store(true)
	return nil
}

func (e *engine) handleAppendRanges(ar *protocol.AppendRanges) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if err := Validate(e.dataset.Order, ar.Ranges); err != nil {
		return err
	}
	e.dataset.Ranges = append(e.dataset.Ranges, ar.Ranges...)
	e.dirty.Store(true)
	return nil
}

func (e *engine) handleFocus(f *protocol.Focus) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return Validate(e.dataset.Order, []protocol.Range{{Start: f.Start, Length: f.Length}})
}

func (e *engine) handleSetOrder(so *protocol.SetOrder) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	order := int(so.Order)
	if order == e.dataset.Order {
		return fmt.Errorf("order is already %d", order)
	}
	if err := Validate(order, e.dataset.Ranges); err != nil {
		return err
	}
	e.dataset.Order = order
	e.dirty.Store(true)
	return nil
}

// Validate checks that every range fits a curve of the given order.
func Validate(order int, rs []protocol.Range) error {
	curve, err := hilbert.NewCurve(order, 1)
	if err != nil {
		return err
	}
	for i := range rs {
		if err := curve.Validate(&ranges.Range{Start: rs[i].Start, Length: rs[i].Length}); err != nil {
			return fmt.Errorf("range %d: %w", i, err)
		}
	}
	return nil
}
