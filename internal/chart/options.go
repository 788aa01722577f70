package chart

import (
	"strconv"

	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/JackWithOneEye/hilbertchart/internal/viewport"
)

const (
	DefaultOrder         = 4
	DefaultWidth         = 512
	DefaultMargin        = 90
	DefaultPickThreshold = 10000
	DefaultLODCeiling    = 5000
)

// Config is the part of the application configuration the chart reads.
type Config interface {
	HilbertOrder() int
	CanvasWidth() int
	Margin() int
	UseCanvas() bool
	EnableZoom() bool
	ShowValueTooltip() bool
	ShowRangeTooltip() bool
	PickThreshold() int
	LODCeiling() int
	Coarsen() bool
}

type Options struct {
	Order  int
	Width  float64
	Margin float64
	Data   []*ranges.Range

	Label           Accessor[string]
	LabelColor      Accessor[string]
	Color           Accessor[string]
	Padding         Accessor[float64]
	PaddingAbsolute Accessor[float64]
	TooltipContent  Accessor[string]

	ValueFormatter func(uint64) string

	ShowValueTooltip bool
	ShowRangeTooltip bool
	EnableZoom       bool

	// UseCanvas selects the raster backend instead of the vector one.
	UseCanvas bool

	// Coarsen lays aligned blocks out at a lower curve order.
	Coarsen bool

	// SimplifyPaths collapses straight runs in vector paths.
	SimplifyPaths bool

	// PickThreshold is the dataset size above which the raster backend's
	// pick buffer replaces the interval index.
	PickThreshold int

	// LODCeiling caps the ranges drawn per frame while zooming.
	LODCeiling int

	Clock     viewport.Clock
	Scheduler Scheduler
}

func DefaultOptions() Options {
	return Options{
		Order:            DefaultOrder,
		Width:            DefaultWidth,
		Margin:           DefaultMargin,
		ShowValueTooltip: true,
		ShowRangeTooltip: true,
		EnableZoom:       true,
		PickThreshold:    DefaultPickThreshold,
		LODCeiling:       DefaultLODCeiling,
	}
}

// OptionsFromConfig returns the default options overridden by cfg.
func OptionsFromConfig(cfg Config) Options {
	o := DefaultOptions()
	o.Order = cfg.HilbertOrder()
	o.Width = float64(cfg.CanvasWidth())
	o.Margin = float64(cfg.Margin())
	o.UseCanvas = cfg.UseCanvas()
	o.EnableZoom = cfg.EnableZoom()
	o.ShowValueTooltip = cfg.ShowValueTooltip()
	o.ShowRangeTooltip = cfg.ShowRangeTooltip()
	o.PickThreshold = cfg.PickThreshold()
	o.LODCeiling = cfg.LODCeiling()
	o.Coarsen = cfg.Coarsen()
	return o
}

func defaultValueFormatter(v uint64) string {
	return strconv.FormatUint(v, 10)
}
