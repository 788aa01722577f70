//go:build js
// +build js

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"syscall/js"
	"time"

	"github.com/JackWithOneEye/hilbertchart/cmd/wasm/canvas"
	"github.com/JackWithOneEye/hilbertchart/cmd/web"
	"github.com/JackWithOneEye/hilbertchart/internal/chart"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/render"
	"github.com/coder/websocket"
)

const focusDuration = 750 * time.Millisecond

var (
	ctx  = context.Background()
	conn *websocket.Conn

	globals   web.Globals
	c         *chart.Chart
	scheduler *canvas.FrameScheduler
	presenter *canvas.Presenter

	initialised = make(chan struct{})

	onMessageFunc = js.FuncOf(func(this js.Value, args []js.Value) any {
		return onMessage(args[0])
	})
)

const (
	msgInit = iota
	msgPointerMove
	msgPointerLeave
	msgWheel
	msgDrag
	msgGestureEnd
	msgClick
	msgFocus
	msgReset
	msgResize
)

func main() {
	global := js.Global()
	defer func() {
		global.Call("removeEventListener", "message", onMessageFunc)
		onMessageFunc.Release()
		if scheduler != nil {
			scheduler.Release()
		}
	}()

	global.Call("addEventListener", "message", onMessageFunc)
	post(map[string]any{"type": "ready"})
	<-initialised

	var err error
	u := url.URL{Path: "/datasets/" + url.PathEscape(globals.Dataset) + "/live"}
	conn, _, err = websocket.Dial(ctx, u.String(), &websocket.DialOptions{})
	if err != nil {
		log.Fatalf("websocket dial failed: %s", err)
	}
	conn.SetReadLimit(33554432) // 2^25
	log.Println("WS CONN OPEN")

	for {
		var o protocol.Output
		_, b, err := conn.Read(ctx)
		if err != nil {
			log.Fatalf("could not read from websocket: %s", err)
		}
		err = o.Decode(b)
		if err != nil {
			log.Fatalf("could not decode data: %s", err)
		}
		if err := apply(o); err != nil {
			postError(fmt.Sprintf("could not show %s: %s", o.Name, err))
		}
	}
}

func post(msg map[string]any) {
	js.Global().Call("postMessage", msg)
}

func postError(msg string) {
	log.Print(msg)
	post(map[string]any{"type": "error", "message": msg})
}

// apply shows a dataset update and runs its focus request.
func apply(o protocol.Output) error {
	if int(o.Order) != c.Curve().Order() {
		if err := c.SetData(nil); err != nil {
			return err
		}
		if err := c.SetOrder(int(o.Order)); err != nil {
			return err
		}
	}
	if err := c.SetData(protocol.ToRanges(o.Ranges)); err != nil {
		return err
	}
	if o.Focus.Length > 0 {
		return c.FocusOn(o.Focus.Start, o.Focus.Length, time.Duration(o.Focus.DurationMs)*time.Millisecond)
	}
	return nil
}

// present shows a frame and hands the tooltip and axes to the page, which
// draws them around the canvas.
func present(b render.Backend) {
	presenter.Present(b)

	tip := c.Tooltip()
	axes := make([]any, 0, 4)
	for _, a := range c.Axes() {
		ticks := make([]any, len(a.Ticks))
		for i, t := range a.Ticks {
			ticks[i] = map[string]any{"offset": t.Offset, "label": t.Label}
		}
		axes = append(axes, map[string]any{"side": a.Side.String(), "ticks": ticks})
	}
	post(map[string]any{
		"type": "overlay",
		"tooltip": map[string]any{
			"visible": tip.Visible,
			"x":       tip.X,
			"y":       tip.Y,
			"value":   tip.Value,
			"range":   tip.Range,
		},
		"axes":     axes,
		"inMotion": c.InMotion(),
	})
}

func handleInit(data js.Value) js.Value {
	if c != nil {
		return makeError("already initialised").Value
	}
	if err := json.Unmarshal([]byte(data.Get("globals").String()), &globals); err != nil {
		return makeError(fmt.Sprintf("init: invalid globals: %s", err)).Value
	}

	scheduler = canvas.NewFrameScheduler()
	presenter = canvas.NewPresenter(data.Get("canvas"), post)

	opts := chart.DefaultOptions()
	opts.Order = globals.Order
	opts.Width = float64(globals.Width)
	opts.Margin = float64(globals.Margin)
	opts.UseCanvas = globals.UseCanvas
	opts.EnableZoom = globals.EnableZoom
	opts.ShowValueTooltip = globals.ShowValueTooltip
	opts.ShowRangeTooltip = globals.ShowRangeTooltip
	opts.PickThreshold = globals.PickThreshold
	opts.LODCeiling = globals.LODCeiling
	opts.Coarsen = globals.Coarsen
	opts.Color = chart.Field[string]("color")
	opts.Scheduler = scheduler

	var err error
	c, err = chart.New(opts)
	if err != nil {
		return makeError(fmt.Sprintf("init: %s", err)).Value
	}
	c.OnRangeClick(func(r *ranges.Range) {
		post(map[string]any{"type": "click", "range": protocol.FromRange(r).Name})
	})
	c.Mount(chart.SurfaceFunc(present))

	close(initialised)
	return js.Undefined()
}

// handleFocus asks every viewer of the dataset to focus the hovered range.
func handleFocus() js.Value {
	r := c.Hovered()
	if r == nil {
		return js.Undefined()
	}
	f := &protocol.Focus{
		Start:      r.Start,
		Length:     r.Length,
		DurationMs: uint16(focusDuration / time.Millisecond),
	}
	// the socket write blocks, which a JS callback must not do
	go func() {
		if err := sendClientMessage(f); err != nil {
			postError(fmt.Sprintf("focus write failed: %s", err))
		}
	}()
	return js.Undefined()
}

func onMessage(msgEvt js.Value) js.Value {
	data := msgEvt.Get("data")
	tpe := data.Get("type").Int()

	if tpe == msgInit {
		return handleInit(data)
	}
	if c == nil {
		return makeError("not initialised").Value
	}

	switch tpe {
	case msgPointerMove:
		c.PointerMove(data.Get("x").Float(), data.Get("y").Float())
	case msgPointerLeave:
		c.PointerLeave()
	case msgWheel:
		c.Wheel(data.Get("delta").Float(), data.Get("x").Float(), data.Get("y").Float())
	case msgDrag:
		c.Drag(data.Get("dx").Float(), data.Get("dy").Float())
	case msgGestureEnd:
		c.GestureEnd()
	case msgClick:
		c.Click(data.Get("x").Float(), data.Get("y").Float())
	case msgFocus:
		return handleFocus()
	case msgReset:
		c.ResetZoom()
	case msgResize:
		if err := c.SetWidth(data.Get("width").Float()); err != nil {
			return makeError(fmt.Sprintf("resize: %s", err)).Value
		}
	default:
		log.Printf("unknown message type: %v", data)
		return makeError(fmt.Sprintf("unknown message type: %v", data)).Value
	}

	return js.Undefined()
}

func makeError(msg string) js.Error {
	return js.Error{Value: js.ValueOf(msg)}
}

func sendClientMessage(msg protocol.ClientMessage) error {
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return conn.Write(ctx, websocket.MessageBinary, msg.Encode())
}
