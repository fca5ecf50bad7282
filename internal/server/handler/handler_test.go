package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/astrosignal/astroalert/internal/domain"
	"github.com/astrosignal/astroalert/internal/risk"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeObjectService struct {
	objects []domain.SpaceObject
}

func (f *fakeObjectService) Objects() []domain.SpaceObject { return f.objects }

func (f *fakeObjectService) ObjectByID(id string) (domain.SpaceObject, error) {
	for _, o := range f.objects {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.SpaceObject{}, domain.ErrNotFound
}

type fakeAlertService struct {
	alerts []domain.Alert
}

func (f *fakeAlertService) Alerts() []domain.Alert { return f.alerts }

type fakeUpdater struct {
	calls int
	snap  domain.Snapshot
}

func (f *fakeUpdater) Update() (domain.Snapshot, []domain.Alert) {
	f.calls++
	return f.snap, nil
}

// testMux registers the handlers under the same patterns the server uses, so
// path parameters resolve through the mux.
func testMux(objects *fakeObjectService, alerts *fakeAlertService, updater *fakeUpdater) *http.ServeMux {
	logger := discardLogger()
	oh := NewObjectHandler(objects, logger)
	ah := NewAlertHandler(alerts, logger)
	uh := NewUpdateHandler(updater, logger)
	mh := NewManeuverHandler(objects, risk.NewModel(), logger)
	hh := NewHealthHandler(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", hh.HealthCheck)
	mux.HandleFunc("GET /api/objects", oh.ListObjects)
	mux.HandleFunc("GET /api/objects/{id}", oh.GetObject)
	mux.HandleFunc("GET /api/alerts", ah.ListAlerts)
	mux.HandleFunc("POST /api/update", uh.TriggerUpdate)
	mux.HandleFunc("POST /api/objects/{id}/suggest_maneuver", mh.SuggestManeuver)
	return mux
}

func issObject() domain.SpaceObject {
	return domain.SpaceObject{
		ID:         "25544",
		Name:       "ISS (ZARYA)",
		Kind:       domain.KindSatellite,
		OrbitClass: domain.OrbitLEO,
		AltitudeKm: 408.0,
		SpeedKmps:  7.66,
	}
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	mux := testMux(&fakeObjectService{}, &fakeAlertService{}, &fakeUpdater{})

	rec := doRequest(t, mux, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["status"] != "ok" {
		t.Errorf("status field = %q", got["status"])
	}
	if got["timestamp"] == "" {
		t.Error("timestamp missing")
	}
}

func TestListObjects(t *testing.T) {
	mux := testMux(&fakeObjectService{objects: []domain.SpaceObject{issObject()}}, &fakeAlertService{}, &fakeUpdater{})

	rec := doRequest(t, mux, http.MethodGet, "/api/objects", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}

	var got []domain.SpaceObject
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].ID != "25544" {
		t.Errorf("objects = %+v", got)
	}
}

func TestGetObject(t *testing.T) {
	mux := testMux(&fakeObjectService{objects: []domain.SpaceObject{issObject()}}, &fakeAlertService{}, &fakeUpdater{})

	rec := doRequest(t, mux, http.MethodGet, "/api/objects/25544", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var got domain.SpaceObject
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "ISS (ZARYA)" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestGetObjectNotFound(t *testing.T) {
	mux := testMux(&fakeObjectService{}, &fakeAlertService{}, &fakeUpdater{})

	rec := doRequest(t, mux, http.MethodGet, "/api/objects/99999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["error"] == "" {
		t.Error("missing error field in 404 body")
	}
}

func TestListAlerts(t *testing.T) {
	alerts := &fakeAlertService{alerts: []domain.Alert{
		{ID: 1, Severity: "high", Message: "close approach", ObjectIDs: []string{"25544", "48274"}},
	}}
	mux := testMux(&fakeObjectService{}, alerts, &fakeUpdater{})

	rec := doRequest(t, mux, http.MethodGet, "/api/alerts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []domain.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 || len(got[0].ObjectIDs) != 2 {
		t.Errorf("alerts = %+v", got)
	}
}

func TestTriggerUpdate(t *testing.T) {
	updater := &fakeUpdater{snap: domain.Snapshot{
		Objects: []domain.SpaceObject{issObject()},
	}}
	mux := testMux(&fakeObjectService{}, &fakeAlertService{}, updater)

	rec := doRequest(t, mux, http.MethodPost, "/api/update", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if updater.calls != 1 {
		t.Errorf("update calls = %d, want 1", updater.calls)
	}
	var got domain.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Objects) != 1 {
		t.Errorf("snapshot objects = %d", len(got.Objects))
	}
}

func TestTriggerUpdateRejectsGet(t *testing.T) {
	mux := testMux(&fakeObjectService{}, &fakeAlertService{}, &fakeUpdater{})

	rec := doRequest(t, mux, http.MethodGet, "/api/update", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestSuggestManeuver(t *testing.T) {
	mux := testMux(&fakeObjectService{objects: []domain.SpaceObject{issObject()}}, &fakeAlertService{}, &fakeUpdater{})

	body := `{"object_id":"25544","distance_km":0.5,"velocity_kmps":10,"altitude":408,"inclination":51.6,"time_to_conjunction":0.1}`
	rec := doRequest(t, mux, http.MethodPost, "/api/objects/25544/suggest_maneuver", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var got risk.Assessment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RiskLevel != domain.RiskHigh {
		t.Errorf("risk level = %v, want High for 0.5 km at 10 km/s", got.RiskLevel)
	}
	if got.ManeuverSuggestion == "" {
		t.Error("empty maneuver suggestion")
	}
}

func TestSuggestManeuverUnknownObject(t *testing.T) {
	mux := testMux(&fakeObjectService{}, &fakeAlertService{}, &fakeUpdater{})

	rec := doRequest(t, mux, http.MethodPost, "/api/objects/99999/suggest_maneuver", `{"distance_km":10}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSuggestManeuverBadBody(t *testing.T) {
	mux := testMux(&fakeObjectService{objects: []domain.SpaceObject{issObject()}}, &fakeAlertService{}, &fakeUpdater{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"negative distance", `{"distance_km":-1,"time_to_conjunction":1}`},
		{"negative ttc", `{"distance_km":1,"time_to_conjunction":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, mux, http.MethodPost, "/api/objects/25544/suggest_maneuver", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
