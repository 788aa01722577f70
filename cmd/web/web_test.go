package web

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	g := &Globals{Dataset: "a&b", Order: 4, Width: 100, Margin: 10}
	var buf bytes.Buffer
	require.NoError(t, Index(g, []string{"a&b", "other set"}).Render(context.Background(), &buf))

	body := buf.String()
	assert.Contains(t, body, `<title>a&amp;b</title>`)
	assert.Contains(t, body, `<script id="globals" type="application/json">`)
	assert.Contains(t, body, `<a href="/?dataset=a%26b" aria-current="page">a&amp;b</a>`)
	assert.Contains(t, body, `<a href="/?dataset=other+set">other set</a>`)
	assert.Contains(t, body, `<div id="chart" style="`)
	assert.Contains(t, body, `width:120px;height:120px`)
	assert.Contains(t, body, `<canvas id="canvas" width="100" height="100" style="`)
	assert.Contains(t, body, `left:10px;top:10px`)
}
