package server

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/JackWithOneEye/hilbertchart/internal/engine"
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
)

const maxMessageSize = 1 << 25 // 32MB

// hub fans the output of one live dataset out to its viewers.
type hub struct {
	engine       engine.Engine
	listeners    map[*listener]struct{}
	listenersMtx sync.Mutex
}

type listener struct {
	msgs chan []byte
}

// hub returns the hub of name, starting it from the stored dataset on first
// use.
func (s *server) hub(ctx context.Context, name string) (*hub, error) {
	s.hubsMtx.Lock()
	defer s.hubsMtx.Unlock()
	if h, ok := s.hubs[name]; ok {
		return h, nil
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	d, err := s.db.GetDataset(ctx, name)
	if err != nil {
		return nil, err
	}
	eng, err := engine.NewEngine(d, s.db, s.ctx)
	if err != nil {
		return nil, err
	}
	h := &hub{
		engine:    eng,
		listeners: make(map[*listener]struct{}),
	}
	s.hubs[name] = h

	go h.fanOut()
	s.engines.Add(1)
	go func() {
		defer s.engines.Done()
		eng.Start()
	}()
	return h, nil
}

func (h *hub) fanOut() {
	for o := range h.engine.Output() {
		h.listenersMtx.Lock()
		for l := range h.listeners {
			select {
			case l.msgs <- o:
			default:
				log.Printf("viewer of %s is too slow, dropping output", h.engine.Name())
			}
		}
		h.listenersMtx.Unlock()
	}
}

func (h *hub) addListener(l *listener) {
	h.listenersMtx.Lock()
	defer h.listenersMtx.Unlock()
	h.listeners[l] = struct{}{}
	l.msgs <- h.engine.Snapshot()
}

func (h *hub) removeListener(l *listener) {
	h.listenersMtx.Lock()
	defer h.listenersMtx.Unlock()
	delete(h.listeners, l)
}

func closedNormally(err error) bool {
	status := websocket.CloseStatus(err)
	return status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway
}

// liveHandler streams the dataset to a viewer: its current state first, then
// every change. Binary frames from the viewer are client messages.
func (s *server) liveHandler(c *gin.Context) {
	h, err := s.hub(c, c.Param("name"))
	if err != nil {
		s.datasetError(c, err)
		return
	}

	w := c.Writer
	r := c.Request
	socket, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("could not open websocket: %s", err)
		return
	}
	defer socket.CloseNow()
	socket.SetReadLimit(maxMessageSize)

	l := &listener{msgs: make(chan []byte, 4)}
	h.addListener(l)
	defer h.removeListener(l)

	readerMsgChan := make(chan []byte)
	readerErrChan := make(chan error, 1)
	reader := func() {
		_, data, err := socket.Read(c)
		if err != nil {
			readerErrChan <- err
			return
		}
		select {
		case readerMsgChan <- data:
		case <-c.Done():
		}
	}

	go reader()

	for {
		select {
		case <-c.Done():
			return
		case <-s.ctx.Done():
			socket.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case payload := <-l.msgs:
			err := socket.Write(c, websocket.MessageBinary, payload)
			if closedNormally(err) {
				return
			}
			if err != nil {
				log.Printf("could not write to websocket: %s", err)
				return
			}
		case msg := <-readerMsgChan:
			err = h.engine.SubmitMessage(msg)
			if errors.Is(err, engine.ErrStopped) {
				socket.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err != nil {
				log.Printf("websocket message produced an error: %s", err)
			}
			go reader()
		case err := <-readerErrChan:
			if closedNormally(err) {
				return
			}
			log.Printf("could not read from websocket: %s", err)
			return
		}
	}
}
