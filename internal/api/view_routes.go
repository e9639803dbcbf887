package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/metrics"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/repository"
)

func (s *Server) handleView(v repository.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.runQuery(w, r, v.Name, v.SQL)
	}
}

// runQuery executes sql through the gateway and writes the rows, or a 400
// carrying the database message.
func (s *Server) runQuery(w http.ResponseWriter, r *http.Request, view, sql string) {
	start := time.Now()
	res, err := s.gw.Query(r.Context(), sql)
	metrics.ObserveQuery(view, err, time.Since(start))

	if err != nil {
		s.log.WithFields(logrus.Fields{"view": view, "error": err.Error()}).Warn("query failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		s.log.WithFields(logrus.Fields{"view": view, "error": err.Error()}).Error("encode rows")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.WithFields(logrus.Fields{
		"view":        view,
		"rows":        res.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("query served")
	writeBody(w, http.StatusOK, body)
}
