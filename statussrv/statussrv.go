/*Package statussrv exposes a read-only JSON view of an attached NetMD
device over HTTP, in the same chi-router-plus-RouteTable style the
corpus's generichttp servers use for instrument HTTP wrappers.

It is intentionally read-only: nothing here issues a command that
mutates disc state (rename, erase, move, download). A monitoring
dashboard or a second process that wants visibility into what the
recorder is doing should not be able to crash a transfer in progress
by polling it.
*/
package statussrv

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/bdube/netmd/netmd"
)

// Server wraps a *netmd.Interface and binds it to read-only HTTP routes.
type Server struct {
	iface *netmd.Interface
	Log   *log.Logger
}

// New constructs a Server around an already-opened Interface.
func New(iface *netmd.Interface, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{iface: iface, Log: logger}
}

// Router builds the chi.Router for this server. Mount it under whatever
// URL stem the caller wants ("/netmd", "/", etc).
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/status", s.handleStatus)
	r.Get("/position", s.handlePosition)
	r.Get("/disc", s.handleDisc)
	r.Get("/disc/capacity", s.handleCapacity)
	r.Get("/tracks/{track}", s.handleTrack)
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Printf("statussrv: encode response: %v", err)
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	s.Log.Printf("statussrv: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

type statusResponse struct {
	Operating string `json:"operating"`
	Playing   bool   `json:"playing"`
	DiscInUse bool   `json:"disc_in_use"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	op, err := s.iface.OperatingStatus()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	block, err := s.iface.Status()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, statusResponse{
		Operating: op.String(),
		Playing:   op == netmd.StatusPlaying,
		DiscInUse: block.DiscPresent(),
	})
}

type positionResponse struct {
	Track  int    `json:"track"`
	Hour   uint64 `json:"hour"`
	Minute uint64 `json:"minute"`
	Second uint64 `json:"second"`
	Frame  uint64 `json:"frame"`
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	pos, err := s.iface.Position()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, positionResponse{
		Track:  pos.Track,
		Hour:   pos.Hour,
		Minute: pos.Minute,
		Second: pos.Second,
		Frame:  pos.Frame,
	})
}

type discResponse struct {
	Title          string   `json:"title"`
	TrackCount     int      `json:"track_count"`
	Writable       bool     `json:"writable"`
	WriteProtected bool     `json:"write_protected"`
	TrackTitle     []string `json:"track_titles"`
}

func (s *Server) handleDisc(w http.ResponseWriter, r *http.Request) {
	title, err := s.iface.RawDiscTitle(false)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	count, err := s.iface.TrackCount()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	flags, err := s.iface.DiscFlagSet()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	tracks := make([]int, count)
	for i := range tracks {
		tracks[i] = i
	}
	titles, err := s.iface.TrackTitles(tracks, false)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, discResponse{
		Title:          title,
		TrackCount:     count,
		Writable:       flags.Writable,
		WriteProtected: flags.WriteProtected,
		TrackTitle:     titles,
	})
}

type capacityResponse struct {
	UsedFrames  uint64 `json:"used_frames"`
	TotalFrames uint64 `json:"total_frames"`
	LeftFrames  uint64 `json:"left_frames"`
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	used, total, left, err := s.iface.DiscCapacity()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, capacityResponse{
		UsedFrames:  used.FramesTotal(),
		TotalFrames: total.FramesTotal(),
		LeftFrames:  left.FramesTotal(),
	})
}

type trackResponse struct {
	Track    int    `json:"track"`
	Title    string `json:"title"`
	Encoding string `json:"encoding"`
	Channels string `json:"channels"`
	Flags    string `json:"flags"`
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	track, err := strconv.Atoi(chi.URLParam(r, "track"))
	if err != nil {
		http.Error(w, "track must be an integer", http.StatusBadRequest)
		return
	}
	title, err := s.iface.TrackTitle(track, false)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	enc, ch, err := s.iface.TrackEncoding(track)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	flag, err := s.iface.TrackFlags(track)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, trackResponse{
		Track:    track,
		Title:    title,
		Encoding: enc.String(),
		Channels: ch.String(),
		Flags:    flag.String(),
	})
}
