// Package server exposes a running Simulation over a websocket for
// browser-side or remote viewers: each tick it broadcasts the current
// body positions/velocities/masses and, optionally, the tree wireframe
// to every connected client. This is the websocket collaborator spec §1
// names as out-of-scope for the core itself.
//
// Grounded on the teacher's server.go: the client-set-plus-RWMutex
// broadcast loop, the per-connection write mutex, and the failed-client
// cleanup pass are all carried over, generalized from planet mesh frames
// to simulation snapshots.
package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nbodysim/engine/simulation"
)

// Snapshot is one broadcast frame: every body's state plus, when
// requested, the tree regions built for the step that produced it.
type Snapshot struct {
	Type      string     `json:"type"`
	Step      int        `json:"step"`
	Bodies    []BodyView `json:"bodies"`
	Tree      []NodeView `json:"tree,omitempty"`
	Diverged  bool       `json:"diverged"`
}

// BodyView is one body's externally visible state.
type BodyView struct {
	Mass     float64    `json:"mass"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
}

// NodeView is one occupied tree region, for wireframe overlays.
type NodeView struct {
	Center [3]float64 `json:"center"`
	Half   float64    `json:"half"`
	Depth  int        `json:"depth"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // development default; tighten for a public deployment
	},
}

// Server drives one Simulation forward at a fixed tick rate and
// broadcasts a Snapshot of it to every connected websocket client.
type Server struct {
	sim  *simulation.Simulation
	rate time.Duration

	// SendTree controls whether broadcast frames include a tree
	// wireframe snapshot; it's off by default since it roughly doubles
	// payload size and most viewers only need body positions.
	SendTree bool

	clientsMutex sync.RWMutex
	clients      map[*websocket.Conn]*sync.Mutex

	stepMutex sync.RWMutex
	step      int
}

// New builds a Server driving sim at one tick per interval.
func New(sim *simulation.Simulation, interval time.Duration) *Server {
	return &Server{
		sim:     sim,
		rate:    interval,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Handler returns the HTTP handler to mount at the websocket endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return s.handleWebSocket
}

// Run advances the simulation and broadcasts a snapshot once per tick
// until stop is closed.
func (s *Server) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sim.Step()
			s.stepMutex.Lock()
			s.step++
			s.stepMutex.Unlock()
			s.broadcast()
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("server: websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.clientsMutex.Lock()
	s.clients[conn] = connMutex
	s.clientsMutex.Unlock()
	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, conn)
		s.clientsMutex.Unlock()
	}()

	s.sendTo(conn, connMutex)

	// Viewers don't push anything back other than a liveness ping, but
	// read their connection anyway so a close is noticed promptly.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) sendTo(conn *websocket.Conn, mutex *sync.Mutex) {
	snap := s.snapshot()
	mutex.Lock()
	conn.WriteJSON(snap)
	mutex.Unlock()
}

func (s *Server) broadcast() {
	snap := s.snapshot()

	s.clientsMutex.RLock()
	var failed []*websocket.Conn
	for client, mutex := range s.clients {
		mutex.Lock()
		err := client.WriteJSON(snap)
		mutex.Unlock()
		if err != nil {
			log.Println("server: websocket write error:", err)
			client.Close()
			failed = append(failed, client)
		}
	}
	s.clientsMutex.RUnlock()

	if len(failed) > 0 {
		s.clientsMutex.Lock()
		for _, client := range failed {
			delete(s.clients, client)
		}
		s.clientsMutex.Unlock()
	}
}

func (s *Server) snapshot() Snapshot {
	s.stepMutex.RLock()
	step := s.step
	s.stepMutex.RUnlock()

	n := s.sim.BodyCount()
	bodies := make([]BodyView, n)
	for i := 0; i < n; i++ {
		pos, vel, mass := s.sim.BodyAt(i)
		bodies[i] = BodyView{
			Mass:     mass,
			Position: [3]float64{pos.X(), pos.Y(), pos.Z()},
			Velocity: [3]float64{vel.X(), vel.Y(), vel.Z()},
		}
	}

	snap := Snapshot{Type: "snapshot", Step: step, Bodies: bodies, Diverged: s.sim.HasDiverged()}

	if s.SendTree {
		regions := s.sim.TreeSnapshot()
		views := make([]NodeView, len(regions))
		for i, r := range regions {
			views[i] = NodeView{
				Center: [3]float64{r.Bounds.Center.X(), r.Bounds.Center.Y(), r.Bounds.Center.Z()},
				Half:   r.Bounds.Half,
				Depth:  r.Depth,
			}
		}
		snap.Tree = views
	}

	return snap
}
