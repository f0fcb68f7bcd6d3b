package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/repository"
)

type handler struct {
	deps Deps
	log  *slog.Logger
}

type errorReply struct {
	Error string `json:"error"`
}

// invalidInput builds a 400-mapped AppError with the sentinel as cause so
// common.HTTPStatus can classify it.
func invalidInput(msg string) error {
	return common.NewAppError("INVALID_INPUT", msg, common.ErrInvalidInput)
}

func notFound(msg string) error {
	return common.NewAppError("NOT_FOUND", msg, common.ErrNotFound)
}

func (h *handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("api.request.failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorReply{Error: err.Error()})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.deps.Pool != nil {
		if err := repository.HealthCheck(r.Context(), h.deps.Pool, 2*time.Second, h.log); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "degraded"})
			return
		}
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, invalidInput("invalid id")
	}
	return id, nil
}

// parseDateWindow accepts ?from= and ?to= as either date-only (2006-01-02)
// or RFC 3339 timestamps.
func parseDateWindow(r *http.Request) (*time.Time, *time.Time, error) {
	parse := func(key string) (*time.Time, error) {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			return nil, nil
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return &t, nil
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, invalidInput("invalid "+key+" date")
		}
		return &t, nil
	}
	from, err := parse("from")
	if err != nil {
		return nil, nil, err
	}
	to, err := parse("to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// --- clients ---

type createClientBody struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

func (h *handler) createClient(w http.ResponseWriter, r *http.Request) {
	var body createClientBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.renderError(w, r, invalidInput("invalid request body"))
		return
	}
	if body.Name == "" {
		h.renderError(w, r, invalidInput("name is required"))
		return
	}
	c, err := h.deps.Clients.Create(r.Context(), &repository.CreateClientRequest{
		Name:  body.Name,
		Phone: body.Phone,
		Email: body.Email,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

func (h *handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	c, err := h.deps.Clients.GetByID(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, c)
}

func (h *handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.deps.Clients.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, clients)
}

// --- bikes ---

type createBikeBody struct {
	ClientID *uuid.UUID `json:"client_id,omitempty"`
	Model    string     `json:"model"`
	Color    *string    `json:"color,omitempty"`
	SerialNo *string    `json:"serial_no,omitempty"`
}

func (h *handler) createBike(w http.ResponseWriter, r *http.Request) {
	var body createBikeBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.renderError(w, r, invalidInput("invalid request body"))
		return
	}
	if body.Model == "" {
		h.renderError(w, r, invalidInput("model is required"))
		return
	}
	if body.ClientID != nil {
		ok, err := h.deps.Clients.Exists(r.Context(), *body.ClientID)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		if !ok {
			h.renderError(w, r, notFound("client not found"))
			return
		}
	}
	b, err := h.deps.Bikes.Create(r.Context(), &repository.CreateBikeRequest{
		ClientID: body.ClientID,
		Model:    body.Model,
		Color:    body.Color,
		SerialNo: body.SerialNo,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, b)
}

func (h *handler) listBikes(w http.ResponseWriter, r *http.Request) {
	var clientID *uuid.UUID
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.renderError(w, r, invalidInput("invalid client_id"))
			return
		}
		clientID = &id
	}
	bikes, err := h.deps.Bikes.List(r.Context(), clientID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, bikes)
}

// --- job sheets ---

func (h *handler) listJobSheets(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateWindow(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	sheets, err := h.deps.Sheets.ListJobSheets(r.Context(), from, to)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, sheets)
}

func (h *handler) getJobSheet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	sheet, err := h.deps.Sheets.GetByID(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, sheet)
}

// --- extraction ---

type extractBody struct {
	Text string `json:"text"`
}

type extractReply struct {
	Draft   extract.JobDraft `json:"draft"`
	Status  string           `json:"status"`
	Missing []string         `json:"missing,omitempty"`
}

// extractDraft runs the field extractor on raw text without persisting anything.
func (h *handler) extractDraft(w http.ResponseWriter, r *http.Request) {
	var body extractBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.renderError(w, r, invalidInput("invalid request body"))
		return
	}
	res := h.deps.Assembler.Extract(body.Text)
	render.JSON(w, r, extractReply{
		Draft:   res.Draft,
		Status:  string(res.Status),
		Missing: res.Missing,
	})
}

// --- scans ---

type scanBody struct {
	Path string `json:"path"`
}

func (h *handler) runScan(w http.ResponseWriter, r *http.Request) {
	var body scanBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.renderError(w, r, invalidInput("invalid request body"))
		return
	}
	if body.Path == "" {
		h.renderError(w, r, invalidInput("path is required"))
		return
	}
	res, err := h.deps.Processor.Process(r.Context(), body.Path)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, res)
}

// --- export ---

func (h *handler) exportJobSheets(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateWindow(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	data, err := h.deps.Exporter.ExportJobSheetsXLSX(r.Context(), from, to)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="jobsheets.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// --- sales ---

type createSaleBody struct {
	ClientID *uuid.UUID `json:"client_id,omitempty"`
	BikeID   *uuid.UUID `json:"bike_id,omitempty"`
	Amount   float64    `json:"amount"`
	SoldAt   *time.Time `json:"sold_at,omitempty"`
}

func (h *handler) createSale(w http.ResponseWriter, r *http.Request) {
	var body createSaleBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.renderError(w, r, invalidInput("invalid request body"))
		return
	}
	if body.Amount < 0 {
		h.renderError(w, r, invalidInput("amount must not be negative"))
		return
	}
	soldAt := time.Now().UTC()
	if body.SoldAt != nil {
		soldAt = *body.SoldAt
	}
	sale, err := h.deps.Sales.Create(r.Context(), &repository.CreateSaleRequest{
		ClientID: body.ClientID,
		BikeID:   body.BikeID,
		Amount:   body.Amount,
		SoldAt:   soldAt,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sale)
}

func (h *handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.deps.Sales.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, sales)
}
