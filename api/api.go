// Package api is a small HTTP control surface: a status snapshot plus the
// same triggers the sensors and MIDI input produce.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/gorilla/mux"

	"hue-ambient/debug"
)

// Err writes err as a plain text response. Errors tagged InvalidArgument
// are the client's fault, everything else is a 500.
func Err(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if ftag.Get(err) == ftag.InvalidArgument {
		code = http.StatusBadRequest
	}
	w.WriteHeader(code)
	w.Write([]byte(err.Error()))
	debug.Log("api", "%d: %v", code, err)
}

type Callbacks interface {
	Status() Status
	TriggerPercussion(sensorID int)
	TriggerChordChange(button int)
	SetMasterVolume(v float64)
	MasterVolume() float64
}

type handler struct {
	Callbacks Callbacks
}

// badRequest tags err as the client's fault. A nil err becomes a new error
// carrying msg.
func badRequest(err error, msg string) error {
	if err == nil {
		err = fault.New(msg)
	}
	return fault.Wrap(err,
		fmsg.WithDesc(msg, msg),
		ftag.With(ftag.InvalidArgument))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Log("api", "encode response: %v", err)
	}
}

func (h *handler) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Callbacks.Status())
}

func (h *handler) handleMotionPost(w http.ResponseWriter, r *http.Request) {
	id := 0
	if s, ok := mux.Vars(r)["id"]; ok {
		i, err := strconv.Atoi(s)
		if err != nil || i < 0 {
			Err(w, badRequest(err, "sensor id must be a non-negative integer"))
			return
		}
		id = i
	}
	h.Callbacks.TriggerPercussion(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleButtonPost(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n < 1 || n > 4 {
		Err(w, badRequest(err, "button must be 1-4"))
		return
	}
	h.Callbacks.TriggerChordChange(n)
	w.WriteHeader(http.StatusNoContent)
}

type volumeBody struct {
	Volume *float64 `json:"volume"`
}

// decodeVolume accepts a bare number or {"volume": n}
func decodeVolume(r *http.Request) (float64, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return 0, badRequest(err, "body must be a number or {\"volume\": n}")
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var body volumeBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, badRequest(err, "body must be a number or {\"volume\": n}")
	}
	if body.Volume == nil {
		return 0, badRequest(nil, "missing volume")
	}
	return *body.Volume, nil
}

func (h *handler) handleVolumePut(w http.ResponseWriter, r *http.Request) {
	v, err := decodeVolume(r)
	if err != nil {
		Err(w, err)
		return
	}
	h.Callbacks.SetMasterVolume(v)
	writeJSON(w, map[string]float64{"volume": h.Callbacks.MasterVolume()})
}

func (h *handler) handleVolumeGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]float64{"volume": h.Callbacks.MasterVolume()})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func NewHandler(cb Callbacks) http.Handler {
	h := &handler{
		Callbacks: cb,
	}

	sr := mux.NewRouter()
	sr.HandleFunc("/status", h.handleStatusGet).Methods(http.MethodGet)
	sr.HandleFunc("/motion", h.handleMotionPost).Methods(http.MethodPost)
	sr.HandleFunc("/motion/{id}", h.handleMotionPost).Methods(http.MethodPost)
	sr.HandleFunc("/button/{n}", h.handleButtonPost).Methods(http.MethodPost)
	sr.HandleFunc("/volume", h.handleVolumeGet).Methods(http.MethodGet)
	sr.HandleFunc("/volume", h.handleVolumePut).Methods(http.MethodPut)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.PathPrefix("/").Handler(sr)
	return r
}
