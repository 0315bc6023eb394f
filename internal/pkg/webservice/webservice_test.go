package webservice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gotest.tools/v3/assert"

	"github.com/ohowland/caseform/internal/pkg/archive"
	"github.com/ohowland/caseform/internal/pkg/caseio"
	"github.com/ohowland/caseform/internal/pkg/msg"
	"github.com/ohowland/caseform/internal/pkg/raw"
)

func newTestHandler(t *testing.T) (*Handler, *archive.MemStore, *msg.PubSub) {
	t.Helper()

	pid, err := uuid.NewUUID()
	assert.NilError(t, err)

	store := archive.NewMemStore()
	pubsub := msg.NewPublisher(pid)

	h, err := New("./webservice_config_test.json", store, pubsub)
	assert.NilError(t, err)
	return h, store, pubsub
}

func fp(v float64) *float64 { return &v }

func testNetwork() *raw.Network {
	return &raw.Network{
		CaseID: raw.CaseID{IC: 0, SBase: 100.0, Rev: 33, BasFrq: fp(50.0)},
		Buses: []raw.Bus{
			{I: 1, BasKV: 138.0, IDE: 3, Area: 1, Zone: 1, VM: 1.0, VA: 0.0, NVHi: 1.1, NVLo: 0.9, EVHi: 1.1, EVLo: 0.9},
			{I: 2, BasKV: 138.0, IDE: 1, Area: 1, Zone: 1, VM: 0.99, VA: -2.3, NVHi: 1.1, NVLo: 0.9, EVHi: 1.1, EVLo: 0.9},
		},
		Loads: []raw.Load{
			{I: 2, ID: "1", Status: 1, Area: 1, Zone: 1, PL: 50.0, QL: 10.0},
		},
		Generators: []raw.Generator{
			{I: 1, ID: "1", PG: 55.0, QG: 12.0, QT: 100.0, QB: -100.0, VS: 1.0, MBase: 100.0, Stat: 1, PT: 200.0, PB: 0.0},
		},
		Branches: []raw.Branch{
			{I: 1, J: 2, CKT: "1", R: 0.01, X: 0.1, B: 0.02, RateA: 130.0, ST: 1},
		},
	}
}

func TestGetConfig(t *testing.T) {
	h, _, _ := newTestHandler(t)
	assert.Equal(t, h.config.Address, "localhost:8080")
}

func TestBaseGet(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/", nil)

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, w.Header().Get("Content-Type"), "application/json; charset=UTF-8")
	assert.Assert(t, strings.Contains(w.Body.String(), "caseform"))
}

func TestConvertPost(t *testing.T) {
	h, store, pubsub := newTestHandler(t)

	subPid, err := uuid.NewUUID()
	assert.NilError(t, err)
	ch, err := pubsub.Subscribe(subPid, msg.Converted)
	assert.NilError(t, err)

	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert?name=smoke", bytes.NewBuffer(reqBody))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, w.Header().Get("Content-Type"), "application/json; charset=UTF-8")

	cs := caseio.CaseSet{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &cs))
	assert.Equal(t, cs.Case.Name, "smoke")
	assert.Equal(t, cs.Case.BaseMVA, 100.0)
	assert.Equal(t, len(cs.Buses), 2)
	assert.Equal(t, len(cs.Gens), 1)
	assert.Equal(t, len(cs.Branches), 1)
	assert.Equal(t, cs.Buses[1].PD, 50.0)

	recs, err := store.List(r.Context())
	assert.NilError(t, err)
	assert.Equal(t, len(recs), 1)
	assert.Equal(t, recs[0].Direction, archive.Convert)
	assert.Equal(t, recs[0].CaseName, "smoke")
	assert.Equal(t, recs[0].Buses, 2)

	m := <-ch
	rec, ok := m.Payload().(archive.Record)
	assert.Assert(t, ok)
	assert.Equal(t, rec.PID, recs[0].PID)
}

func TestConvertMalformedJSON(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert", strings.NewReader("{"))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusBadRequest)

	resp := errorResponse{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Assert(t, strings.Contains(resp.Error, "malformed JSON"))
}

func TestConvertDanglingRef(t *testing.T) {
	h, store, _ := newTestHandler(t)

	net := testNetwork()
	net.Branches[0].J = 99

	reqBody, err := json.Marshal(net)
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert", bytes.NewBuffer(reqBody))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusUnprocessableEntity)

	resp := errorResponse{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Assert(t, strings.Contains(resp.Error, "references unknown bus 99"))

	recs, err := store.List(r.Context())
	assert.NilError(t, err)
	assert.Equal(t, len(recs), 0)
}

func TestConvertFormatCase(t *testing.T) {
	h, _, _ := newTestHandler(t)

	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert?format=case", bytes.NewBuffer(reqBody))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, w.Header().Get("Content-Type"), "application/zip")
	assert.Assert(t, strings.Contains(w.Header().Get("Content-Disposition"), ".zip"))

	body := w.Body.Bytes()
	cs, err := caseio.ReadZipFile(bytes.NewReader(body), int64(len(body)))
	assert.NilError(t, err)
	assert.Equal(t, cs.Case.Name, "case")
	assert.Equal(t, len(cs.Buses), 2)
}

func TestConvertFormatMPC(t *testing.T) {
	h, _, _ := newTestHandler(t)

	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert?name=smoke&format=mpc", bytes.NewBuffer(reqBody))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, w.Header().Get("Content-Type"), "text/plain; charset=UTF-8")
	assert.Assert(t, strings.Contains(w.Body.String(), "function mpc = smoke\n"))
	assert.Assert(t, strings.Contains(w.Body.String(), "mpc.baseMVA = 100;\n"))
}

func TestConvertFormatDataset(t *testing.T) {
	h, _, _ := newTestHandler(t)

	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert?name=smoke&format=dataset", bytes.NewBuffer(reqBody))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)

	ds := caseio.Dataset{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &ds))
	assert.Equal(t, ds.CaseName, "smoke")
	assert.DeepEqual(t, ds.BusI, []int{1, 2})
}

func TestConvertUnknownFormat(t *testing.T) {
	h, _, _ := newTestHandler(t)

	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert?format=yaml", bytes.NewBuffer(reqBody))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusBadRequest)

	resp := errorResponse{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Assert(t, strings.Contains(resp.Error, "unknown format: yaml"))
}

func TestReversePost(t *testing.T) {
	h, store, pubsub := newTestHandler(t)

	subPid, err := uuid.NewUUID()
	assert.NilError(t, err)
	ch, err := pubsub.Subscribe(subPid, msg.Reversed)
	assert.NilError(t, err)

	// Convert first, then feed the archive back through /reverse.
	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert?name=smoke&format=case", bytes.NewBuffer(reqBody))
	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest("POST", "http://example.com/reverse", bytes.NewReader(w.Body.Bytes()))
	h.Router().ServeHTTP(w2, r2)
	assert.Equal(t, w2.Code, http.StatusOK)

	net := raw.Network{}
	assert.NilError(t, json.Unmarshal(w2.Body.Bytes(), &net))
	assert.Equal(t, net.CaseID.SBase, 100.0)
	assert.Equal(t, len(net.Buses), 2)
	assert.Equal(t, len(net.Loads), 1)
	assert.Equal(t, net.Loads[0].PL, 50.0)

	recs, err := store.List(r2.Context())
	assert.NilError(t, err)
	assert.Equal(t, len(recs), 2)

	m := <-ch
	rec, ok := m.Payload().(archive.Record)
	assert.Assert(t, ok)
	assert.Equal(t, rec.Direction, archive.Reverse)
	assert.Equal(t, rec.CaseName, "smoke")
}

func TestReverseBadArchive(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/reverse", strings.NewReader("not a zip archive"))

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusBadRequest)
}

func TestCasesEmpty(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/cases", nil)

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, strings.TrimSpace(w.Body.String()), "[]")
}

func TestCaseGet(t *testing.T) {
	h, store, _ := newTestHandler(t)

	rec := archive.NewRecord(archive.Convert, "entsoe", 2, 1, 2, 1)
	assert.NilError(t, store.Put(context.Background(), rec))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/cases/"+rec.PID.String(), nil)

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)

	got := archive.Record{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, got.PID, rec.PID)
	assert.Equal(t, got.CaseName, "entsoe")
}

func TestCaseNotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/cases/"+uuid.New().String(), nil)

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusNotFound)
}

func TestCaseMalformedUUID(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/cases/not-a-uuid", nil)

	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusBadRequest)

	resp := errorResponse{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Assert(t, strings.Contains(resp.Error, "malformed UUID"))
}

func waitForClients(t *testing.T, hub *wsHub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		hub.mux.RLock()
		count := len(hub.clients)
		hub.mux.RUnlock()
		if count >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("websocket client never registered")
}

func TestEventsStream(t *testing.T) {
	h, _, _ := newTestHandler(t)

	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NilError(t, err)
	defer conn.Close()
	resp.Body.Close()

	waitForClients(t, h.events, 1)

	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	post, err := http.Post(srv.URL+"/convert?name=smoke", "application/json", bytes.NewReader(reqBody))
	assert.NilError(t, err)
	assert.Equal(t, post.StatusCode, http.StatusOK)
	post.Body.Close()

	assert.NilError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	assert.NilError(t, err)

	rec := archive.Record{}
	assert.NilError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, rec.Direction, archive.Convert)
	assert.Equal(t, rec.CaseName, "smoke")
}

func TestMetricsExposed(t *testing.T) {
	h, _, _ := newTestHandler(t)

	reqBody, err := json.Marshal(testNetwork())
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/convert", bytes.NewBuffer(reqBody))
	h.Router().ServeHTTP(w, r)
	assert.Equal(t, w.Code, http.StatusOK)

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest("GET", "http://example.com/metrics", nil)
	h.Router().ServeHTTP(w2, r2)
	assert.Equal(t, w2.Code, http.StatusOK)

	body := w2.Body.String()
	assert.Assert(t, strings.Contains(body, "caseform_conversions_total"))
	assert.Assert(t, strings.Contains(body, `direction="convert"`))
	assert.Assert(t, strings.Contains(body, "caseform_conversion_seconds"))
}
