package in

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/monitor/dto"
	monitorin "trafficwatch/internal/modules/monitor/port/in"
	apperrors "trafficwatch/internal/platform/errors"
	"trafficwatch/internal/platform/httpjson"
)

type HTTPHandler struct {
	usecase monitorin.Usecase
	logger  hclog.Logger
}

func NewHTTPHandler(usecase monitorin.Usecase, logger hclog.Logger) HTTPHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return HTTPHandler{usecase: usecase, logger: logger}
}

func (h HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/traffic/history", h.history)
	mux.HandleFunc("GET /api/v1/traffic/stats", h.stats)
}

// history returns the stored samples, an empty list when nothing has been
// recorded yet.
func (h HTTPHandler) history(w http.ResponseWriter, r *http.Request) {
	input := dto.HistoryInput{}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			httpjson.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		input.Limit = limit
	}
	since, err := parseTimeParam(q.Get("since"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	input.Since = since

	samples, err := h.usecase.History(r.Context(), input)
	if err != nil {
		h.logger.Error("error reading history data", "error", err)
		httpjson.WriteError(w, http.StatusInternalServerError, "Error reading history data: "+err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, samples)
}

func (h HTTPHandler) stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	since, err := parseTimeParam(q.Get("since"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	until, err := parseTimeParam(q.Get("until"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.usecase.Stats(r.Context(), dto.StatsInput{Since: since, Until: until})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		httpjson.WriteError(w, status, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, stats)
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected RFC3339", v)
	}
	return ts, nil
}
