package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/JackWithOneEye/hilbertchart/cmd/web"
	"github.com/JackWithOneEye/hilbertchart/internal/chart"
	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/JackWithOneEye/hilbertchart/internal/engine"
	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
	"github.com/JackWithOneEye/hilbertchart/internal/livereload"
	"github.com/JackWithOneEye/hilbertchart/internal/protocol"
	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

type ServerConfig interface {
	chart.Config
	Port() uint
	Dataset() string
	LiveReload() bool
}

// Server is an http.Server that also stops the live datasets it serves.
type Server struct {
	*http.Server
	s *server
}

type server struct {
	ctx     context.Context
	cancel  context.CancelFunc
	engines sync.WaitGroup
	cfg     ServerConfig
	db      database.DatabaseService
	hubs    map[string]*hub
	hubsMtx sync.Mutex
}

// NewServer serves the datasets in db. Live datasets keep running until ctx
// ends or the server shuts down.
func NewServer(cfg ServerConfig, db database.DatabaseService, ctx context.Context) *Server {
	s := &server{
		cfg:  cfg,
		db:   db,
		hubs: make(map[string]*hub),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	return &Server{
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port()),
			Handler:           s.registerRoutes(),
			IdleTimeout:       time.Minute,
			ReadHeaderTimeout: 10 * time.Second,
		},
		s: s,
	}
}

// Shutdown closes the live connections, waits for live datasets to be
// saved and then shuts the http server down gracefully.
func (srv *Server) Shutdown(ctx context.Context) error {
	srv.stopEngines()
	return srv.Server.Shutdown(ctx)
}

func (srv *Server) Close() error {
	srv.stopEngines()
	return srv.Server.Close()
}

func (srv *Server) stopEngines() {
	srv.s.hubsMtx.Lock()
	srv.s.cancel()
	srv.s.hubsMtx.Unlock()
	srv.s.engines.Wait()
}

func (s *server) registerRoutes() http.Handler {
	r := gin.Default()

	r.Static("/assets", "./cmd/web/assets")

	if s.cfg.LiveReload() {
		r.GET("/_livereload", livereload.Handler(s.ctx))
		r.GET("/", livereload.InjectScript("/_livereload", s.indexHandler))
	} else {
		r.GET("/", s.indexHandler)
	}
	r.GET("/globals", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.globals(c, c.DefaultQuery("dataset", s.cfg.Dataset())))
	})

	datasets := r.Group("/datasets")
	datasets.GET("", s.listHandler)
	datasets.GET("/:name", s.getHandler)
	datasets.PUT("/:name", s.putHandler)
	datasets.GET("/:name/live", s.liveHandler)
	datasets.GET("/:name/svg", s.svgHandler)
	datasets.GET("/:name/png", s.pngHandler)

	return r
}

func (s *server) globals(ctx context.Context, name string) *web.Globals {
	g := &web.Globals{
		Dataset:          name,
		Order:            s.cfg.HilbertOrder(),
		Width:            s.cfg.CanvasWidth(),
		Margin:           s.cfg.Margin(),
		UseCanvas:        s.cfg.UseCanvas(),
		EnableZoom:       s.cfg.EnableZoom(),
		ShowValueTooltip: s.cfg.ShowValueTooltip(),
		ShowRangeTooltip: s.cfg.ShowRangeTooltip(),
		PickThreshold:    s.cfg.PickThreshold(),
		LODCeiling:       s.cfg.LODCeiling(),
		Coarsen:          s.cfg.Coarsen(),
	}
	if d, err := s.dataset(ctx, name); err == nil {
		g.Order = d.Order
	}
	return g
}

func (s *server) indexHandler(c *gin.Context) {
	list, err := s.db.ListDatasets(c)
	if err != nil {
		log.Printf("could not list datasets: %s", err)
		c.String(http.StatusInternalServerError, "could not list datasets")
		return
	}
	names := make([]string, len(list))
	for i, sm := range list {
		names[i] = sm.Name
	}
	g := s.globals(c, c.DefaultQuery("dataset", s.cfg.Dataset()))
	templ.Handler(web.Index(g, names)).ServeHTTP(c.Writer, c.Request)
}

func (s *server) listHandler(c *gin.Context) {
	list, err := s.db.ListDatasets(c)
	if err != nil {
		log.Printf("could not list datasets: %s", err)
		c.String(http.StatusInternalServerError, "could not list datasets")
		return
	}
	c.JSON(http.StatusOK, list)
}

// dataset returns the live state of name if it is being served, the stored
// one otherwise.
func (s *server) dataset(ctx context.Context, name string) (*database.Dataset, error) {
	s.hubsMtx.Lock()
	h, ok := s.hubs[name]
	s.hubsMtx.Unlock()
	if ok {
		d := h.engine.Dataset()
		return &d, nil
	}
	return s.db.GetDataset(ctx, name)
}

func (s *server) getHandler(c *gin.Context) {
	d, err := s.dataset(c, c.Param("name"))
	if err != nil {
		s.datasetError(c, err)
		return
	}
	if d.Ranges == nil {
		d.Ranges = []protocol.Range{}
	}
	c.JSON(http.StatusOK, d)
}

type putRequest struct {
	Order  *int             `json:"order" binding:"required,min=0,max=31"`
	Ranges []protocol.Range `json:"ranges"`
}

func (s *server) putHandler(c *gin.Context) {
	var req putRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if err := engine.Validate(*req.Order, req.Ranges); err != nil {
		c.String(http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.checkLayout(*req.Order, req.Ranges); err != nil {
		c.String(http.StatusUnprocessableEntity, err.Error())
		return
	}

	name := c.Param("name")
	s.hubsMtx.Lock()
	h, live := s.hubs[name]
	s.hubsMtx.Unlock()
	if live {
		if h.engine.Dataset().Order != *req.Order {
			c.String(http.StatusConflict, "cannot change the order of a live dataset")
			return
		}
		if err := h.engine.SubmitMessage((&protocol.SetRanges{Ranges: req.Ranges}).Encode()); err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, engine.ErrStopped) {
				status = http.StatusServiceUnavailable
			}
			c.String(status, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	d := &database.Dataset{Name: name, Order: *req.Order, Ranges: req.Ranges}
	if err := s.db.WriteDataset(c, d); err != nil {
		log.Printf("could not write dataset %s: %s", name, err)
		c.String(http.StatusInternalServerError, "could not write dataset")
		return
	}
	c.Status(http.StatusNoContent)
}

// checkLayout rejects datasets whose snapshots would walk too many cells.
func (s *server) checkLayout(order int, rs []protocol.Range) error {
	var opts []hilbert.Option
	if s.cfg.Coarsen() {
		opts = append(opts, hilbert.WithCoarsening())
	}
	curve, err := hilbert.NewCurve(order, 1, opts...)
	if err != nil {
		return err
	}
	return curve.CheckBudget(protocol.ToRanges(rs))
}

func (s *server) datasetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrDatasetNotFound):
		c.String(http.StatusNotFound, err.Error())
	case errors.Is(err, hilbert.ErrRangeOverflow), errors.Is(err, hilbert.ErrEmptyRange), errors.Is(err, hilbert.ErrInvalidOrder),
		errors.Is(err, hilbert.ErrLayoutTooLarge):
		c.String(http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("dataset error: %s", err)
		c.String(http.StatusInternalServerError, "dataset error")
	}
}
