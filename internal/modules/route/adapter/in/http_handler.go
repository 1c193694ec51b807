package in

import (
	"errors"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/route/dto"
	routein "trafficwatch/internal/modules/route/port/in"
	apperrors "trafficwatch/internal/platform/errors"
	"trafficwatch/internal/platform/httpjson"
)

type HTTPHandler struct {
	usecase routein.Usecase
	logger  hclog.Logger
}

func NewHTTPHandler(usecase routein.Usecase, logger hclog.Logger) HTTPHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return HTTPHandler{usecase: usecase, logger: logger}
}

func (h HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/traffic/duration", h.duration)
	mux.HandleFunc("POST /api/v1/geocode", h.geocode)
}

func (h HTTPHandler) duration(w http.ResponseWriter, r *http.Request) {
	var input dto.LookupInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.WriteError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	out, err := h.usecase.Lookup(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrProviderStatus), errors.Is(err, apperrors.ErrMalformedResponse):
			h.logger.Warn("invalid response from amap api", "error", err)
			httpjson.WriteError(w, http.StatusBadRequest, "Invalid response from Amap API: "+err.Error())
		default:
			h.logger.Error("request to amap api failed", "error", err)
			httpjson.WriteError(w, http.StatusInternalServerError, "Request to Amap API failed: "+err.Error())
		}
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

func (h HTTPHandler) geocode(w http.ResponseWriter, r *http.Request) {
	var input dto.GeocodeInput
	if err := httpjson.Decode(r, &input); err != nil {
		httpjson.WriteError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	out, err := h.usecase.Geocode(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrProviderStatus), errors.Is(err, apperrors.ErrMalformedResponse):
			httpjson.WriteError(w, http.StatusBadRequest, "Address not found")
		default:
			h.logger.Error("geocode failed", "error", err)
			httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}
