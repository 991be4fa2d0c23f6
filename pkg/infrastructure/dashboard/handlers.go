package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
)

// PageData holds data for template rendering.
type PageData struct {
	Title          string
	Now            time.Time
	Summary        labor.Summary
	Staffing       labor.StaffingSignal
	Centers        []CenterView
	Employees      []EmployeeView
	History        *labor.Reconstruction
	Target         string
	RefreshSeconds int
	Error          string
}

// CenterView pairs a center summary with its display config.
type CenterView struct {
	labor.CenterSummary
	Display      labor.Display
	Contributors []labor.Contribution
}

// EmployeeView is one row of the on-the-clock list.
type EmployeeView struct {
	labor.Employee
	Hours float64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	summary, err := s.provider.Summary()
	if err != nil {
		data := s.basePage("Labor Board", s.provider.Now())
		data.Error = err.Error()
		s.render(w, "index.html", data)
		return
	}

	// Every figure on the page is as of the summary instant.
	data := s.basePage("Labor Board", summary.At)
	data.Summary = summary
	data.Staffing = summary.Staffing()
	for _, c := range summary.Centers {
		data.Centers = append(data.Centers, CenterView{CenterSummary: c, Display: s.displays.For(c.Name)})
	}

	employees, err := s.provider.ListEmployees(true)
	if err != nil {
		data.Error = err.Error()
	}
	for _, e := range employees {
		data.Employees = append(data.Employees, EmployeeView{Employee: e, Hours: e.ElapsedHours(data.Now)})
	}

	s.render(w, "index.html", data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("History", s.provider.Now())
	data.Target = strings.TrimSpace(r.URL.Query().Get("at"))
	if data.Target == "" {
		s.render(w, "history.html", data)
		return
	}

	rec, err := s.provider.Reconstruct(data.Target)
	if err != nil {
		data.Error = err.Error()
		s.render(w, "history.html", data)
		return
	}
	data.History = &rec
	data.Staffing = rec.Staffing()
	for _, d := range rec.Details {
		data.Centers = append(data.Centers, CenterView{
			CenterSummary: d.CenterSummary,
			Display:       s.displays.For(d.Name),
			Contributors:  d.Contributors,
		})
	}
	s.render(w, "history.html", data)
}

func (s *Server) basePage(title string, now time.Time) PageData {
	return PageData{
		Title:          title,
		Now:            now,
		RefreshSeconds: int(s.refresh.Seconds()),
	}
}

// summaryResponse is the JSON shape of /api/summary and websocket pushes.
type summaryResponse struct {
	labor.Summary
	Staffing     labor.StaffingSignal `json:"staffing"`
	StaffingText string               `json:"staffing_text"`
}

func newSummaryResponse(s labor.Summary) summaryResponse {
	signal := s.Staffing()
	return summaryResponse{Summary: s, Staffing: signal, StaffingText: signal.String()}
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.provider.Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(summary))
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	at := strings.TrimSpace(r.URL.Query().Get("at"))
	if at == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing at parameter"})
		return
	}
	rec, err := s.provider.Reconstruct(at)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAPIEmployees(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	employees, err := s.provider.ListEmployees(activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if employees == nil {
		employees = []labor.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

type checkInRequest struct {
	Name          string `json:"name"`
	RevenueCenter string `json:"revenue_center"`
	At            string `json:"at,omitempty"`
}

type checkOutRequest struct {
	At string `json:"at,omitempty"`
}

type centerRequest struct {
	Sales   *float64 `json:"sales,omitempty"`
	Divisor *float64 `json:"divisor,omitempty"`
}

func (s *Server) handleAPICheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	at, err := s.optionalTime(req.At)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := s.provider.CheckIn(req.Name, req.RevenueCenter, at)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleAPICheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
	}
	at, err := s.optionalTime(req.At)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := s.provider.CheckOut(r.PathValue("id"), at)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleAPICenter(w http.ResponseWriter, r *http.Request) {
	var req centerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if req.Sales == nil && req.Divisor == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "sales or divisor required"})
		return
	}

	name := r.PathValue("name")
	var (
		center labor.RevenueCenter
		err    error
	)
	if req.Sales != nil {
		if center, err = s.provider.SetSales(name, *req.Sales); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Divisor != nil {
		if center, err = s.provider.SetDivisor(name, *req.Divisor); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, center)
}

// optionalTime parses an absolute timestamp or a clock time on today's date.
func (s *Server) optionalTime(v string) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, ok := labor.ParseTimestamp(v, s.provider.Now())
	if !ok {
		return nil, fmt.Errorf("%w: %q", labor.ErrInvalidTime, v)
	}
	return &t, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, labor.ErrEmployeeNotFound), errors.Is(err, labor.ErrCenterNotFound):
		status = http.StatusNotFound
	case errors.Is(err, labor.ErrAlreadyCheckedOut), errors.Is(err, labor.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, labor.ErrEmptyName), errors.Is(err, labor.ErrUnknownCenter),
		errors.Is(err, labor.ErrInvalidSales), errors.Is(err, labor.ErrInvalidDivisor),
		errors.Is(err, labor.ErrNegativeBreak), errors.Is(err, labor.ErrInvalidTime):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("15:04")
}

func toJSON(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(b)
}
