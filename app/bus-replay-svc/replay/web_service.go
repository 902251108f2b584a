package replay

import (
	"context"
	"encoding/json"
	"errors"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/phanikiran-1619/smv-replay/foundation/metrics"
)

//defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

//ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

//replayHandler holds data needed to respond to replay and live marker requests
type replayHandler struct {
	log        *logger.Logger
	manager    *sessionManager
	reconciler *liveFeedReconciler
}

func makeReplayHandler(log *logger.Logger,
	manager *sessionManager,
	reconciler *liveFeedReconciler) *replayHandler {
	return &replayHandler{
		log:        log,
		manager:    manager,
		reconciler: reconciler,
	}
}

//openSession creates or replaces the replay session for the requested journey
func (h *replayHandler) openSession(w http.ResponseWriter, r *http.Request) {
	var request SessionRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		http.Error(w, "invalid session request body", http.StatusBadRequest)
		return
	}
	snapshot, err := h.manager.open(r.Context(), request)
	if err != nil {
		h.log.Printf("error opening replay session: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, &snapshot)
}

//getSession serves the current snapshot of one session
func (h *replayHandler) getSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFor(w, r)
	if session == nil {
		return
	}
	snapshot := session.snapshot(time.Now())
	h.writeJSON(w, &snapshot)
}

//playSession starts auto-play on one session
func (h *replayHandler) playSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFor(w, r)
	if session == nil {
		return
	}
	session.play()
	snapshot := session.snapshot(time.Now())
	h.writeJSON(w, &snapshot)
}

//pauseSession stops auto-play on one session
func (h *replayHandler) pauseSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFor(w, r)
	if session == nil {
		return
	}
	session.pause()
	snapshot := session.snapshot(time.Now())
	h.writeJSON(w, &snapshot)
}

//seekSession scrubs one session to the progress form value
func (h *replayHandler) seekSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFor(w, r)
	if session == nil {
		return
	}
	progress, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("progress")), 64)
	if err != nil {
		http.Error(w, "progress must be a number in [0,100]", http.StatusBadRequest)
		return
	}
	session.seek(progress)
	snapshot := session.snapshot(time.Now())
	h.writeJSON(w, &snapshot)
}

//resetSession returns one session to the beginning
func (h *replayHandler) resetSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFor(w, r)
	if session == nil {
		return
	}
	session.reset()
	snapshot := session.snapshot(time.Now())
	h.writeJSON(w, &snapshot)
}

//closeSession removes one session
func (h *replayHandler) closeSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.manager.remove(id) {
		http.Error(w, "no session with id "+id, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

//liveMarker serves the interpolated live marker for one device
func (h *replayHandler) liveMarker(w http.ResponseWriter, r *http.Request) {
	deviceId := mux.Vars(r)["deviceId"]
	marker, present := h.reconciler.markerAt(deviceId, time.Now())
	if !present {
		http.Error(w, "no live position for device "+deviceId, http.StatusNotFound)
		return
	}
	h.writeJSON(w, &marker)
}

//sessionFor resolves the session from the request path, writing a 404 when absent
func (h *replayHandler) sessionFor(w http.ResponseWriter, r *http.Request) *replaySession {
	id := mux.Vars(r)["id"]
	session := h.manager.get(id)
	if session == nil {
		http.Error(w, "no session with id "+id, http.StatusNotFound)
	}
	return session
}

//writeJSON marshals payload to the response writer
func (h *replayHandler) writeJSON(w http.ResponseWriter, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		h.log.Printf("error marshaling response: %v", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(jsonData)
	if err != nil {
		h.log.Printf("error writing json response: %v", err)
	}
}

//createServer creates the configured http.Server serving replay and live marker requests
func createServer(log *logger.Logger,
	manager *sessionManager,
	reconciler *liveFeedReconciler,
	collector *metrics.Collector,
	httpPort int) *http.Server {

	handler := makeReplayHandler(log, manager, reconciler)

	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.HandleFunc("/replay", handler.openSession).Methods(http.MethodPost)
	r.HandleFunc("/replay/{id}", handler.getSession).Methods(http.MethodGet)
	r.HandleFunc("/replay/{id}", handler.closeSession).Methods(http.MethodDelete)
	r.HandleFunc("/replay/{id}/play", handler.playSession).Methods(http.MethodPost)
	r.HandleFunc("/replay/{id}/pause", handler.pauseSession).Methods(http.MethodPost)
	r.HandleFunc("/replay/{id}/seek", handler.seekSession).Methods(http.MethodPost)
	r.HandleFunc("/replay/{id}/reset", handler.resetSession).Methods(http.MethodPost)
	r.HandleFunc("/live/{deviceId}", handler.liveMarker).Methods(http.MethodGet)
	if collector != nil {
		r.Handle("/metrics", collector.Handler())
	}

	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}
	return srv
}

//runWebService starts up the replay web service, and terminates on shutdown signal
func runWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	manager *sessionManager,
	reconciler *liveFeedReconciler,
	collector *metrics.Collector,
	httpPort int,
	shutdownSignal chan bool) {
	wg.Add(1)
	defer wg.Done()
	srv := createServer(log, manager, reconciler, collector, httpPort)
	log.Printf("Starting server on port %d", httpPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}
}
