package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/application"
	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
	"github.com/felixgeelhaar/laborboard/pkg/storage"
	"github.com/gorilla/websocket"
)

var testDay = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return testDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

type testBoard struct {
	svc    *application.LaborService
	server *Server
}

func newTestBoard(t *testing.T) *testBoard {
	t.Helper()

	pub := storage.NewInMemoryEventPublisher()
	seq := 0
	svc := application.NewLaborService(storage.NewMemoryRepository(),
		application.NewAuditService(nil, pub, nil),
		application.WithClock(func() time.Time { return at(12, 0) }),
		application.WithDefaultDivisors(map[string]float64{"dining": 200, "lounge": 100, "patio": 150}),
		application.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	if _, err := svc.SeedCenters(); err != nil {
		t.Fatal(err)
	}

	displays, err := labor.NewDisplayTable(map[string]labor.Display{"dining": {Label: "Main Floor"}})
	if err != nil {
		t.Fatal(err)
	}
	server, err := NewServer(":0", svc, WithPublisher(pub), WithDisplays(displays), WithRefresh(time.Hour))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return &testBoard{svc: svc, server: server}
}

func (b *testBoard) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	b.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (b *testBoard) checkIn(t *testing.T, name, center string, h int) *labor.Employee {
	t.Helper()
	start := at(h, 0)
	e, err := b.svc.CheckIn(name, center, &start)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNewServer(t *testing.T) {
	b := newTestBoard(t)
	if b.server.addr != ":0" {
		t.Errorf("Expected addr :0, got %s", b.server.addr)
	}
	if b.server.sse == nil {
		t.Error("expected SSE handler when a publisher is configured")
	}

	bare, err := NewServer(":8080", b.svc)
	if err != nil {
		t.Fatal(err)
	}
	if bare.refresh != time.Minute || bare.sse != nil {
		t.Errorf("unexpected defaults: refresh=%v sse=%v", bare.refresh, bare.sse)
	}
}

func TestHandleIndex(t *testing.T) {
	b := newTestBoard(t)
	b.checkIn(t, "Ana", "dining", 9)
	if _, err := b.svc.SetSales("dining", 1000); err != nil {
		t.Fatal(err)
	}

	rec := b.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Main Floor", "Ana", "3.00", "$333.33", "Lounge"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestHandleIndex_OneInstantPerRender(t *testing.T) {
	// The clock moves 30 minutes every time it is read.
	now := at(11, 0)
	svc := application.NewLaborService(storage.NewMemoryRepository(), nil,
		application.WithClock(func() time.Time {
			now = now.Add(30 * time.Minute)
			return now
		}),
	)
	if _, err := svc.SeedCenters(); err != nil {
		t.Fatal(err)
	}
	start := at(9, 0)
	if _, err := svc.CheckIn("Ana", "dining", &start); err != nil {
		t.Fatal(err)
	}
	server, err := NewServer(":0", svc)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()

	total := regexp.MustCompile(`id="total-labor">([0-9.]+)<`).FindStringSubmatch(body)
	row := regexp.MustCompile(`<td>Ana</td>.*<td>([0-9.]+)</td></tr>`).FindStringSubmatch(body)
	if total == nil || row == nil {
		t.Fatalf("could not find figures in page:\n%s", body)
	}
	if total[1] != row[1] {
		t.Errorf("total labor %s and Ana's row %s read different clocks", total[1], row[1])
	}
}

func TestHandleIndex_Empty(t *testing.T) {
	b := newTestBoard(t)
	rec := b.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Nobody is on the clock.") {
		t.Error("expected empty roster message")
	}
}

func TestHandleHistory(t *testing.T) {
	b := newTestBoard(t)
	e := b.checkIn(t, "Ana", "dining", 8)
	end := at(11, 0)
	if _, err := b.svc.CheckOut(e.ID, &end); err != nil {
		t.Fatal(err)
	}

	rec := b.do(t, http.MethodGet, "/history?at=10:00", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Board at 10:00") || !strings.Contains(body, "2.00") {
		t.Errorf("unexpected history page: %s", body)
	}

	rec = b.do(t, http.MethodGet, "/history?at=noonish", "")
	if !strings.Contains(rec.Body.String(), "not a time of day") {
		t.Error("expected parse error on page")
	}

	rec = b.do(t, http.MethodGet, "/history", "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "Board at") {
		t.Error("expected empty form without target")
	}
}

func TestAPISummary(t *testing.T) {
	b := newTestBoard(t)
	b.checkIn(t, "Ana", "dining", 9)
	b.checkIn(t, "Ben", "lounge", 10)

	rec := b.do(t, http.MethodGet, "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var got struct {
		TotalLaborHours float64 `json:"total_labor_hours"`
		Centers         []struct {
			Name       string  `json:"name"`
			LaborHours float64 `json:"labor_hours"`
		} `json:"centers"`
		Staffing struct {
			Status string `json:"status"`
		} `json:"staffing"`
		StaffingText string `json:"staffing_text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalLaborHours != 5 || len(got.Centers) != 3 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.Staffing.Status != string(labor.OverStaffed) || !strings.HasPrefix(got.StaffingText, "over-staffed") {
		t.Errorf("unexpected staffing: %+v", got)
	}
}

func TestAPIHistory(t *testing.T) {
	b := newTestBoard(t)
	b.checkIn(t, "Ana", "dining", 9)

	rec := b.do(t, http.MethodGet, "/api/history?at=11:30", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var got labor.Reconstruction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalLaborHours != 2.5 || len(got.Details[0].Contributors) != 1 {
		t.Errorf("unexpected reconstruction: %+v", got)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/history", http.StatusBadRequest},
		{"/api/history?at=later", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := b.do(t, http.MethodGet, tt.path, ""); rec.Code != tt.want {
			t.Errorf("%s: want %d, got %d", tt.path, tt.want, rec.Code)
		}
	}
}

func TestAPIEmployees(t *testing.T) {
	b := newTestBoard(t)
	b.checkIn(t, "Ana", "dining", 9)
	e := b.checkIn(t, "Ben", "patio", 10)
	if _, err := b.svc.CheckOut(e.ID, nil); err != nil {
		t.Fatal(err)
	}

	var all, active []labor.Employee
	_ = json.Unmarshal(b.do(t, http.MethodGet, "/api/employees", "").Body.Bytes(), &all)
	_ = json.Unmarshal(b.do(t, http.MethodGet, "/api/employees?active=true", "").Body.Bytes(), &active)
	if len(all) != 2 || len(active) != 1 || active[0].Name != "Ana" {
		t.Errorf("unexpected lists: all=%d active=%+v", len(all), active)
	}

	empty := newTestBoard(t)
	if body := strings.TrimSpace(empty.do(t, http.MethodGet, "/api/employees", "").Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestAPICheckInCheckOut(t *testing.T) {
	b := newTestBoard(t)

	rec := b.do(t, http.MethodPost, "/api/checkin", `{"name":"Ana","revenue_center":"dining","at":"09:15"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var e labor.Employee
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatal(err)
	}
	if !e.StartTime.Equal(at(9, 15)) || !bool(e.IsActive) {
		t.Errorf("unexpected employee: %+v", e)
	}

	rec = b.do(t, http.MethodPost, "/api/employees/"+e.ID+"/checkout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = b.do(t, http.MethodPost, "/api/employees/"+e.ID+"/checkout", `{"at":"13:00"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("second checkout: expected 409, got %d", rec.Code)
	}
	rec = b.do(t, http.MethodPost, "/api/employees/missing/checkout", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown employee: expected 404, got %d", rec.Code)
	}
}

func TestAPICheckIn_Validation(t *testing.T) {
	b := newTestBoard(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty name", `{"name":"  ","revenue_center":"dining"}`, http.StatusBadRequest},
		{"unknown center", `{"name":"Ana","revenue_center":"rooftop"}`, http.StatusBadRequest},
		{"bad time", `{"name":"Ana","revenue_center":"dining","at":"soon"}`, http.StatusBadRequest},
		{"bad json", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := b.do(t, http.MethodPost, "/api/checkin", tt.body); rec.Code != tt.want {
				t.Errorf("want %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAPICenter(t *testing.T) {
	b := newTestBoard(t)

	rec := b.do(t, http.MethodPut, "/api/centers/dining", `{"sales":1200,"divisor":300}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var c labor.RevenueCenter
	_ = json.Unmarshal(rec.Body.Bytes(), &c)
	if c.Sales != 1200 || c.Divisor != 300 {
		t.Errorf("unexpected center: %+v", c)
	}

	tests := []struct {
		name, path, body string
		want             int
	}{
		{"zero divisor", "/api/centers/dining", `{"divisor":0}`, http.StatusBadRequest},
		{"negative sales", "/api/centers/dining", `{"sales":-1}`, http.StatusBadRequest},
		{"no fields", "/api/centers/dining", `{}`, http.StatusBadRequest},
		{"unknown center", "/api/centers/rooftop", `{"sales":10}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := b.do(t, http.MethodPut, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("want %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestSSEStreamsChanges(t *testing.T) {
	b := newTestBoard(t)
	ts := httptest.NewServer(b.server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events?types=shift.checked_in", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	if _, err := b.svc.SetSales("dining", 10); err != nil {
		t.Fatal(err)
	}
	b.checkIn(t, "Ana", "dining", 9)

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) != 3 || lines[1] != "event: shift.checked_in" {
		t.Fatalf("unexpected SSE frame: %v", lines)
	}
	if !strings.Contains(lines[2], `"aggregate_id":"id-4"`) {
		t.Errorf("unexpected data line: %s", lines[2])
	}
}

func TestWebSocketPushesSummary(t *testing.T) {
	b := newTestBoard(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.server.RunBroadcaster(ctx)

	ts := httptest.NewServer(b.server.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() map[string]interface{} {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	}

	if first := read(); first["total_labor_hours"] != 0.0 {
		t.Errorf("expected empty board on connect, got %v", first["total_labor_hours"])
	}

	b.checkIn(t, "Ana", "dining", 9)
	if next := read(); next["total_labor_hours"] != 3.0 {
		t.Errorf("expected push after check-in, got %v", next["total_labor_hours"])
	}
}
