package api

import (
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const maxQueryBodyBytes = 1 << 20

const errNoQuery = "No query provided."

// handleExecuteQuery runs the caller's SQL verbatim. There is no
// allow-list, parameterization or read-only enforcement here: anyone who
// can reach this route can run any statement the database role permits.
// Restricting it means putting a policy layer or a read-only role in front.
func (s *Server) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, errNoQuery)
		return
	}
	q := gjson.GetBytes(body, "query")
	if q.Type != gjson.String || q.Str == "" {
		writeError(w, http.StatusBadRequest, errNoQuery)
		return
	}

	s.log.WithFields(logrus.Fields{"query": truncate(q.Str, 200)}).Info("executing custom query")
	s.runQuery(w, r, "custom", q.Str)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
