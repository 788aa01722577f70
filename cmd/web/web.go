// Package web holds the browser page and its static assets.
package web

//go:generate templ generate

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"
)

// Globals is the chart configuration handed to browser and terminal
// clients.
type Globals struct {
	Dataset          string `json:"dataset"`
	Order            int    `json:"order"`
	Width            int    `json:"width"`
	Margin           int    `json:"margin"`
	UseCanvas        bool   `json:"useCanvas"`
	EnableZoom       bool   `json:"enableZoom"`
	ShowValueTooltip bool   `json:"showValueTooltip"`
	ShowRangeTooltip bool   `json:"showRangeTooltip"`
	PickThreshold    int    `json:"pickThreshold"`
	LODCeiling       int    `json:"lodCeiling"`
	Coarsen          bool   `json:"coarsen"`
}

func datasetURL(name string) templ.SafeURL {
	return templ.SafeURL("/?dataset=" + url.QueryEscape(name))
}

func chartAttrs(g *Globals) templ.Attributes {
	size := g.Width + 2*g.Margin
	return templ.Attributes{"style": fmt.Sprintf("position:relative;width:%dpx;height:%dpx", size, size)}
}

func canvasAttrs(g *Globals) templ.Attributes {
	return templ.Attributes{"style": fmt.Sprintf("position:absolute;left:%dpx;top:%dpx", g.Margin, g.Margin)}
}
