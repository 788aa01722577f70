// Package livereload reloads open pages once the server restarts.
package livereload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var errNoHead = errors.New("no <head> element node found")

type injectorWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *injectorWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *injectorWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// InjectScript wraps a page handler. Successful responses get the reload
// script, which watches the socket served by Handler at path, appended to
// their <head>.
func InjectScript(path string, handlerFunc gin.HandlerFunc) gin.HandlerFunc {
	script, err := scriptFor(path)
	if err != nil {
		panic(err)
	}
	return func(c *gin.Context) {
		w := &injectorWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w
		handlerFunc(c)
		c.Writer = w.ResponseWriter

		if w.Status() != http.StatusOK {
			_, _ = w.ResponseWriter.Write(w.body.Bytes())
			return
		}

		page := w.body.Bytes()
		var out bytes.Buffer
		if err := inject(&out, bytes.NewReader(page), script); err != nil {
			log.Printf("could not inject livereload script: %s", err)
			_, _ = w.ResponseWriter.Write(page)
			return
		}
		_, _ = w.ResponseWriter.Write(out.Bytes())
	}
}

// Handler holds the reload socket open until the client leaves or ctx ends.
// Pages reconnect and reload after the close.
func Handler(ctx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		socket, err := websocket.Accept(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("could not open livereload websocket: %s", err)
			return
		}
		defer socket.CloseNow()

		readCtx := socket.CloseRead(c)
		select {
		case <-readCtx.Done():
		case <-ctx.Done():
			socket.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

func inject(w io.Writer, page io.Reader, script string) error {
	doc, err := html.Parse(page)
	if err != nil {
		return err
	}
	head := findHead(doc)
	if head == nil {
		return errNoHead
	}
	head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     atom.Script.String(),
		FirstChild: &html.Node{
			Type: html.TextNode,
			Data: script,
		},
	})
	return html.Render(w, doc)
}

func findHead(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Head {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if head := findHead(child); head != nil {
			return head
		}
	}
	return nil
}
