// Package session is the authoritative owner of one canvas: its node
// graph, geometry, selection, and viewport. Every mutation funnels
// through a single serialized command path, so async backend
// completions always observe the latest committed state rather than a
// snapshot from when they were scheduled. Each commit bumps a
// revision and publishes one event on the session's bus.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prismdocs/atlas/pkg/backend"
	"github.com/prismdocs/atlas/pkg/camera"
	"github.com/prismdocs/atlas/pkg/canvas"
	"github.com/prismdocs/atlas/pkg/geometry"
	"github.com/prismdocs/atlas/pkg/logging"
	"github.com/prismdocs/atlas/pkg/metrics"
	"github.com/prismdocs/atlas/pkg/pubsub"
	"github.com/prismdocs/atlas/pkg/viewport"
)

// Backend is the slice of the LLM client the session drives
type Backend interface {
	GenerateGraph(ctx context.Context, req backend.GenerateRequest) (*backend.GenerateResponse, error)
	GenerateGraphStream(ctx context.Context, req backend.GenerateRequest, onNode backend.NodeFrameFunc) error
	ExpandNode(ctx context.Context, req backend.ExpandRequest) (*backend.GenerateResponse, error)
	SuggestExpand(ctx context.Context, req backend.SuggestExpandRequest) (*backend.SuggestResponse, error)
	MergeNodes(ctx context.Context, req backend.MergeRequest) (*backend.MergeResponse, error)
	SuggestMerge(ctx context.Context, req backend.SuggestMergeRequest) (*backend.SuggestResponse, error)
	CreateNodeFromPrompt(ctx context.Context, req backend.CreateNodeRequest) (*backend.CreateNodeResponse, error)
}

// Project is the loadable/serveable canvas state
type Project struct {
	Documents []backend.Document `json:"documents"`
	Nodes     []*canvas.Node     `json:"nodes"`
}

// Config configures a session
type Config struct {
	ID      string
	Backend Backend
	Bus     *pubsub.Bus
	Bounds  viewport.BoundsFunc
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Session owns one canvas instance
type Session struct {
	id string

	mu        sync.Mutex
	graph     *canvas.Graph
	geometry  *canvas.GeometryStore
	selection *canvas.Selection
	viewport  *viewport.Viewport
	camera    *camera.Director
	documents []backend.Document
	revision  uint64
	closed    bool

	backend Backend
	bus     *pubsub.Bus
	logger  logging.Logger
	metrics *metrics.Registry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an empty session
func New(cfg Config) *Session {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = pubsub.NewBus()
	}

	ctx, cancel := context.WithCancel(context.Background())
	vp := viewport.New(cfg.Bounds)
	geo := canvas.NewGeometryStore()

	s := &Session{
		id:        id,
		graph:     canvas.NewGraph(),
		geometry:  geo,
		selection: canvas.NewSelection(),
		viewport:  vp,
		documents: nil,
		backend:   cfg.Backend,
		bus:       bus,
		logger:    logger.With(logging.Component("session"), logging.SessionID(id)),
		metrics:   reg,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.camera = camera.New(vp, func(nodeID string) (geometry.Rect, bool) {
		return geo.Get(nodeID)
	})
	reg.SessionsActive.Inc()
	return s
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Close cancels in-flight backend work and ends the session
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.metrics.SessionsActive.Dec()
	s.logger.Info("session closed")
}

// apply runs one mutation under the session lock. On success the
// revision advances and one event goes out on the bus; on error the
// state is whatever fn left behind, so fns must not commit partial
// work before failing.
func (s *Session) apply(op string, fn func() error) error {
	start := time.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.metrics.RecordSessionOperation(op, "error", time.Since(start))
		return canvas.ErrSessionClosed
	}
	err := fn()
	var rev uint64
	if err == nil {
		s.revision++
		rev = s.revision
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.RecordSessionOperation(op, "error", time.Since(start))
		s.logger.Error("mutation failed", logging.Operation(op), logging.Error(err))
		return err
	}

	s.metrics.RecordSessionOperation(op, "success", time.Since(start))
	nodes, edges := s.graphCounts()
	s.metrics.UpdateGraphSize(nodes, edges)
	s.publish(op, rev)
	return nil
}

func (s *Session) publish(op string, rev uint64) {
	s.bus.Publish(pubsub.Event{
		SessionID: s.id,
		Type:      op,
		Revision:  rev,
	})
}

// Revision returns the current commit counter
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// LoadProject replaces the session's documents and node graph
func (s *Session) LoadProject(p Project) error {
	return s.apply("load_project", func() error {
		s.documents = append([]backend.Document(nil), p.Documents...)
		s.graph = canvas.NewGraphFrom(p.Nodes)
		s.selection.Clear()
		s.geometry.Sync(s.graph.Nodes(), nil)
		return nil
	})
}

// Project returns a deep copy of the current documents and nodes
func (s *Session) Project() Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Project{
		Documents: append([]backend.Document(nil), s.documents...),
		Nodes:     s.graph.Snapshot(),
	}
}

// Nodes returns the live node slice in insertion order. Callers must
// treat it as read-only outside an active gesture.
func (s *Session) Nodes() []*canvas.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Nodes()
}

// Node returns the live node with the given id
func (s *Session) Node(id string) (*canvas.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.graph.Node(id)
	return n, n != nil
}

// Viewport returns the session's viewport
func (s *Session) Viewport() *viewport.Viewport { return s.viewport }

// Geometry returns the session's measured-geometry store
func (s *Session) Geometry() *canvas.GeometryStore { return s.geometry }

// Camera returns the session's camera director
func (s *Session) Camera() *camera.Director { return s.camera }

// CameraAnimating reports whether a focus animation is in flight,
// serialized with the mutation path
func (s *Session) CameraAnimating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Animating()
}

// StepCamera advances the focus animation under the session lock so
// render loops never race an async focus request
func (s *Session) StepCamera(dt float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Step(dt)
}

// Selection returns the ids currently selected, sorted
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IDs()
}

// SetNodePosition writes a node's position during an active drag
func (s *Session) SetNodePosition(id string, p geometry.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.graph.Node(id); n != nil {
		n.Position = p
	}
}

// SetNodeBounds writes a node's position and size during an active
// resize, keeping the measured geometry in step
func (s *Session) SetNodeBounds(id string, r geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.graph.Node(id); n != nil {
		n.Position = r.Position()
		n.Width = r.Width
		n.Height = r.Height
		s.geometry.Set(id, r)
	}
}

// SyncGeometry records a render pass's measured rects under the
// session lock, so hit-testing, collision checks, and async placement
// all agree with what is on screen. Positions come from the live
// nodes; measurements for departed nodes are evicted.
func (s *Session) SyncGeometry(measured map[string]geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.Sync(s.graph.Nodes(), func(n *canvas.Node) (geometry.Size, bool) {
		r, ok := measured[n.ID]
		if !ok {
			return geometry.Size{}, false
		}
		return geometry.Size{Width: r.Width, Height: r.Height}, true
	})
}

// MinHeight is the content-derived resize floor for a node
func (s *Session) MinHeight(id string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.graph.Node(id)
	if n == nil {
		return canvas.DefaultNodeHeight
	}
	return contentMinHeight(n)
}

// contentMinHeight estimates the smallest height that still shows the
// node's title and every content line.
func contentMinHeight(n *canvas.Node) float64 {
	const (
		chromeHeight = 64.0 // title bar plus padding
		lineHeight   = 24.0
		floor        = 120.0
	)
	h := chromeHeight + float64(len(n.Content))*lineHeight
	if h < floor {
		return floor
	}
	return h
}

// graphCounts reports nodes and edges for the size gauges
func (s *Session) graphCounts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Len(), len(s.graph.Edges())
}
