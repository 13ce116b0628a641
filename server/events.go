package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/etnz/findash"
	"go.uber.org/zap"
)

// handleEvents streams one server-sent "revision" event per dataset change.
//
// The current revision is sent first, if any.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	revs := s.store.Subscribe(ctx)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	last := s.store.Revision()
	if last.N > 0 {
		if err := writeEvent(w, last); err != nil {
			return
		}
	}
	flusher.Flush()

	keepAlive := time.NewTicker(s.opts.KeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case rev, ok := <-revs:
			if !ok {
				return
			}
			if rev.N <= last.N {
				continue
			}
			last = rev
			if err := writeEvent(w, rev); err != nil {
				s.logger.Debug("event stream closed", zap.Error(err))
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, rev findash.Revision) error {
	data, err := json.Marshal(rev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: revision\nid: %d\ndata: %s\n\n", rev.N, data)
	return err
}
