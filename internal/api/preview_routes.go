package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/metrics"
	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/repository"
)

var previewNotFound = map[string]string{
	"file":  "Raw data file not found.",
	"table": "Raw data table not found.",
}

func (s *Server) handleRawPreview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := s.preview.Preview(r.Context())
	metrics.ObserveQuery(repository.RawPreview.Name, err, time.Since(start))

	if errors.Is(err, repository.ErrSourceNotFound) {
		msg, ok := previewNotFound[s.preview.Source()]
		if !ok {
			msg = "Raw data not found."
		}
		writeError(w, http.StatusNotFound, msg)
		return
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{"source": s.preview.Source(), "error": err.Error()}).Error("raw data preview failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBody(w, http.StatusOK, body)
}
