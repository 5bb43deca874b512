// Package ws serves map generation over a websocket. A client sends one
// GENERATE request & receives PROGRESS updates followed by a single DONE
// or ERROR message, after which the server closes the connection.
// Closing the connection early cancels the generation.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/voidshard/terramap"
)

const (
	TypeGenerate = "GENERATE"
	TypeProgress = "PROGRESS"
	TypeDone     = "DONE"
	TypeError    = "ERROR"
)

// Request is the first (& only) message a client sends.
type Request struct {
	Type string `json:"type"`

	// Settings overlay DefaultSettings; omitted fields keep defaults
	Settings json.RawMessage `json:"settings,omitempty"`

	// IncludeSites asks for every site in the DONE message
	IncludeSites bool `json:"include_sites,omitempty"`
}

// ProgressMsg reports stage progress. Updates may be dropped if the client
// reads slowly.
type ProgressMsg struct {
	Type  string  `json:"type"`
	Pct   float64 `json:"pct"`
	Label string  `json:"label"`
}

// DoneMsg carries the finished map.
type DoneMsg struct {
	Type          string             `json:"type"`
	Seed          int64              `json:"seed"`
	WaterSurfaceZ float64            `json:"water_surface_z"`
	RiverSites    []int              `json:"river_sites"`
	Stats         *terramap.MapStats `json:"stats"`
	Sites         []*terramap.Site   `json:"sites,omitempty"`
}

// ErrorMsg ends a failed generation.
type ErrorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Server upgrades http requests & runs one generation per connection.
type Server struct {
	log *log.Logger
	gen *terramap.Generator

	upgrader websocket.Upgrader

	// OnMap, if set, is called with every successfully generated map
	// after the DONE message is sent.
	OnMap func(*terramap.Map)
}

// NewServer returns a Server logging to logger.
func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		gen: &terramap.Generator{Logger: logger},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler returns the websocket endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		req, cfg, err := s.handshake(conn)
		if err != nil {
			s.log.Printf("ws %s: %v", r.RemoteAddr, err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan interface{}, 32)
		var wg sync.WaitGroup

		// Writer goroutine.
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range out {
				if err := writeJSON(conn, msg); err != nil {
					cancel()
					// keep draining so senders never block
					for range out {
					}
					return
				}
			}
		}()

		// Reader goroutine; the client has nothing more to say, so any read
		// result means it has gone away.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		gen := *s.gen
		gen.Progress = terramap.ProgressFunc(func(pct float64, label string) {
			select {
			case out <- &ProgressMsg{Type: TypeProgress, Pct: pct, Label: label}:
			default:
			}
		})

		m, err := gen.Generate(ctx, cfg)
		if err != nil {
			out <- &ErrorMsg{Type: TypeError, Error: err.Error()}
		} else {
			done := &DoneMsg{
				Type:          TypeDone,
				Seed:          m.Seed,
				WaterSurfaceZ: m.WaterSurfaceZ,
				RiverSites:    m.RiverSites,
				Stats:         m.Stats,
			}
			if req.IncludeSites {
				done.Sites = m.Sites
			}
			out <- done
		}
		close(out)
		wg.Wait()

		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))

		if err == nil && s.OnMap != nil {
			s.OnMap(m)
		}
	}
}

// handshake reads the GENERATE request & builds its settings.
func (s *Server) handshake(conn *websocket.Conn) (*Request, *terramap.Settings, error) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	var req Request
	if err := json.Unmarshal(msg, &req); err != nil || req.Type != TypeGenerate {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected GENERATE"), time.Now().Add(time.Second))
		return nil, nil, errors.New("expected GENERATE")
	}

	cfg := terramap.DefaultSettings()
	if len(req.Settings) > 0 {
		if err := json.Unmarshal(req.Settings, cfg); err != nil {
			_ = writeJSON(conn, &ErrorMsg{Type: TypeError, Error: err.Error()})
			return nil, nil, errors.Wrap(err, "settings")
		}
	}
	return &req, cfg, nil
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
