// Package webservice exposes the conversion engine over HTTP. POST
// /convert turns a raw network document into a normalized case, POST
// /reverse turns an uploaded case archive back into a raw network, and
// the /cases endpoints list what the daemon has converted. Completed
// conversions publish on the system bus, count toward the /metrics
// registry and stream to websocket clients on /events.
package webservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ohowland/caseform/internal/pkg/archive"
	"github.com/ohowland/caseform/internal/pkg/casedata"
	"github.com/ohowland/caseform/internal/pkg/caseio"
	"github.com/ohowland/caseform/internal/pkg/convert"
	"github.com/ohowland/caseform/internal/pkg/msg"
	"github.com/ohowland/caseform/internal/pkg/raw"
)

type Handler struct {
	pid     uuid.UUID
	config  config
	store   archive.Store
	pubsub  *msg.PubSub
	metrics *metrics
	events  *wsHub
}

type config struct {
	Address string `json:"Address"`
}

type metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	duration    prometheus.Histogram
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "caseform_conversions_total",
		Help: "Conversions by direction and outcome.",
	}, []string{"direction", "outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "caseform_conversion_seconds",
		Help:    "Wall time of completed conversions.",
		Buckets: prometheus.DefBuckets,
	})
	registry.MustRegister(
		conversions,
		duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &metrics{
		registry:    registry,
		conversions: conversions,
		duration:    duration,
	}
}

// New reads the service config and binds the store and system bus.
func New(configPath string, store archive.Store, pubsub *msg.PubSub) (*Handler, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return nil, err
	}
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	events, err := newWSHub(pubsub)
	if err != nil {
		return nil, err
	}

	return &Handler{
		pid:     pid,
		config:  cfg,
		store:   store,
		pubsub:  pubsub,
		metrics: newMetrics(),
		events:  events,
	}, nil
}

// PID returns the handler's process id.
func (h *Handler) PID() uuid.UUID {
	return h.pid
}

// Router wires the service routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.BaseHandler).Methods("GET")
	r.HandleFunc("/convert", h.ConvertHandler).Methods("POST")
	r.HandleFunc("/reverse", h.ReverseHandler).Methods("POST")
	r.HandleFunc("/cases", h.CasesHandler).Methods("GET")
	r.HandleFunc("/cases/{pid}", h.CaseHandler).Methods("GET")
	r.HandleFunc("/events", h.EventsHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

// Serve blocks on the listen address from the service config.
func (h *Handler) Serve() error {
	log.Println("[Webservice] Starting Server on", h.config.Address)
	return http.ListenAndServe(h.config.Address, h.Router())
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	body, err := json.Marshal(v)
	if err != nil {
		log.Println("malformed JSON:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		log.Println("[Webservice] write:", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// BaseHandler reports the service name.
func (h *Handler) BaseHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Service string `json:"service"`
	}{Service: "caseform"})
}

// ConvertHandler converts a raw network document into a normalized
// case. The response body follows the format query parameter: json
// (default), case (zip archive), mpc or dataset.
func (h *Handler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	net := raw.Network{}
	if err := json.Unmarshal(body, &net); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed JSON: %v", err))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "case"
	}

	res, err := convert.ToCase(name, &net)
	if err != nil {
		h.metrics.conversions.WithLabelValues(archive.Convert, "rejected").Inc()
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	cs := &caseio.CaseSet{
		Case:     res.Case,
		Buses:    res.Buses,
		Gens:     res.Gens,
		Branches: res.Branches,
		DCLines:  res.DCLines,
	}

	rec := archive.NewRecord(archive.Convert, res.Case.Name,
		len(res.Buses), len(res.Gens), len(res.Branches), len(res.DCLines))
	if err := h.store.Put(r.Context(), rec); err != nil {
		log.Println("[Webservice] archive:", err)
	}
	h.pubsub.Publish(msg.Converted, rec)

	h.metrics.conversions.WithLabelValues(archive.Convert, "ok").Inc()
	h.metrics.duration.Observe(time.Since(start).Seconds())

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, cs)
	case "case":
		buf := &bytes.Buffer{}
		if err := caseio.WriteZipTo(buf, cs); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Case.Name+".zip"))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	case "mpc":
		buf := &bytes.Buffer{}
		if err := caseio.WriteMPC(buf, cs); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	case "dataset":
		writeJSON(w, http.StatusOK, caseio.NewDataset(cs.Case, cs.Buses, cs.Gens, cs.Branches))
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format: %s", format))
	}
}

// ReverseHandler turns an uploaded case archive back into a raw network
// document.
func (h *Handler) ReverseHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cs, err := caseio.ReadZipFile(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	busIndex := casedata.BusIndex(cs.Buses)
	net, err := convert.ToRaw(cs.Case, cs.Buses, cs.Gens, cs.Branches, cs.DCLines, busIndex)
	if err != nil {
		h.metrics.conversions.WithLabelValues(archive.Reverse, "rejected").Inc()
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	rec := archive.NewRecord(archive.Reverse, cs.Case.Name,
		len(cs.Buses), len(cs.Gens), len(cs.Branches), len(cs.DCLines))
	if err := h.store.Put(r.Context(), rec); err != nil {
		log.Println("[Webservice] archive:", err)
	}
	h.pubsub.Publish(msg.Reversed, rec)

	h.metrics.conversions.WithLabelValues(archive.Reverse, "ok").Inc()
	h.metrics.duration.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, net)
}

// CasesHandler lists stored conversion records, newest first.
func (h *Handler) CasesHandler(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if recs == nil {
		recs = []archive.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// CaseHandler returns one conversion record by PID.
func (h *Handler) CaseHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pid, err := uuid.Parse(vars["pid"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed UUID: %v", err))
		return
	}

	rec, ok, err := h.store.Get(r.Context(), pid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("case %s not found", pid))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
