package server

import (
	"bytes"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/JackWithOneEye/hilbertchart/internal/chart"
	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	"github.com/JackWithOneEye/hilbertchart/internal/render"
	"github.com/gin-gonic/gin"
)

// snapshotQuery optionally focuses the rendered chart on a range.
type snapshotQuery struct {
	Start  uint64 `form:"start"`
	Length uint64 `form:"length"`
}

// renderDataset draws one settled frame of d with the chosen backend.
func (s *server) renderDataset(d *database.Dataset, useCanvas bool, q snapshotQuery) (render.Backend, error) {
	frames := &chart.FrameQueue{}
	opts := chart.OptionsFromConfig(s.cfg)
	opts.Order = d.Order
	opts.Data = protocol.ToRanges(d.Ranges)
	opts.Color = chart.Field[string]("color")
	opts.UseCanvas = useCanvas
	opts.Scheduler = frames

	c, err := chart.New(opts)
	if err != nil {
		return nil, err
	}
	if q.Length > 0 {
		if err := c.FocusOn(q.Start, q.Length, 0); err != nil {
			return nil, err
		}
	}
	c.Mount(chart.SurfaceFunc(func(render.Backend) {}))
	frames.Flush(time.Now())
	return c.Backend(), nil
}

func (s *server) snapshot(c *gin.Context, useCanvas bool) render.Backend {
	var q snapshotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return nil
	}
	d, err := s.dataset(c, c.Param("name"))
	if err != nil {
		s.datasetError(c, err)
		return nil
	}
	b, err := s.renderDataset(d, useCanvas, q)
	if err != nil {
		s.datasetError(c, err)
		return nil
	}
	return b
}

func (s *server) svgHandler(c *gin.Context) {
	b := s.snapshot(c, false)
	if b == nil {
		return
	}
	var buf bytes.Buffer
	if err := b.(*render.Vector).Scene().WriteSVG(&buf); err != nil {
		log.Printf("could not write svg: %s", err)
		c.String(http.StatusInternalServerError, "could not write svg")
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (s *server) pngHandler(c *gin.Context) {
	b := s.snapshot(c, true)
	if b == nil {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.(*render.Raster).Image()); err != nil {
		log.Printf("could not encode png: %s", err)
		c.String(http.StatusInternalServerError, "could not encode png")
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
