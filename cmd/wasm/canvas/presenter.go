//go:build js
// +build js

package canvas

import (
	"image"
	"log"
	"strings"
	"syscall/js"

	"github.com/JackWithOneEye/hilbertchart/internal/render"
)

var (
	imageDataCtor         = js.Global().Get("ImageData")
	uint8ClampedArrayCtor = js.Global().Get("Uint8ClampedArray")
)

// Presenter shows chart frames. Raster frames go to the OffscreenCanvas,
// vector frames are posted to the page as SVG markup.
type Presenter struct {
	canvas js.Value // OffscreenCanvas
	ctx    js.Value // OffscreenCanvasRenderingContext2D
	pixels js.Value // Uint8ClampedArray
	post   func(msg map[string]any)
}

func NewPresenter(canvas js.Value, post func(msg map[string]any)) *Presenter {
	return &Presenter{
		canvas: canvas,
		ctx:    canvas.Call("getContext", "2d"),
		pixels: js.Undefined(),
		post:   post,
	}
}

func (p *Presenter) Present(b render.Backend) {
	switch b := b.(type) {
	case *render.Raster:
		p.putImage(b.Image())
	case *render.Vector:
		var sb strings.Builder
		if err := b.Scene().WriteSVG(&sb); err != nil {
			log.Printf("could not write svg: %s", err)
			return
		}
		p.post(map[string]any{"type": "svg", "svg": sb.String()})
	}
}

func (p *Presenter) putImage(img *image.RGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if p.canvas.Get("width").Int() != w || p.canvas.Get("height").Int() != h {
		p.canvas.Set("width", w)
		p.canvas.Set("height", h)
	}
	if p.pixels.IsUndefined() || p.pixels.Get("length").Int() != len(img.Pix) {
		p.pixels = uint8ClampedArrayCtor.New(len(img.Pix))
	}
	js.CopyBytesToJS(p.pixels, img.Pix)
	p.ctx.Call("putImageData", imageDataCtor.New(p.pixels, w, h), 0, 0)
}
