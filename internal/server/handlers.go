package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/freightflow/gateway/internal/dataplane"
	"github.com/freightflow/gateway/internal/identity"
	"github.com/freightflow/gateway/pkg/rateshop"
)

// ============================================================================
// Auth
// ============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Company  string `json:"company,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	cred, err := s.bridge.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.metrics.RecordRequest("login", "", "error", 0)
		writeUpstreamError(w, err)
		return
	}
	s.recordExchange(cred.Degraded())
	writeJSON(w, http.StatusOK, cred)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	profile := identity.Profile{Name: req.Name, Company: req.Company}
	cred, err := s.bridge.Register(r.Context(), req.Email, req.Password, profile)
	if err != nil {
		s.metrics.RecordRequest("register", "", "error", 0)
		writeUpstreamError(w, err)
		return
	}
	s.recordExchange(cred.Degraded())
	writeJSON(w, http.StatusCreated, cred)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.Logout(r.Context()); err != nil {
		// The credential is already cleared; report the sign-out failure
		// without resurrecting the session.
		s.logger.Warn("identity sign-out failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *identity.User `json:"user,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !s.bridge.IsAuthenticated() {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	user, err := s.bridge.CurrentUser(r.Context())
	if err != nil {
		// Presence check passed but the provider rejected the token; the
		// session is still reported, re-auth happens on the next fatal call.
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: user})
}

func (s *Server) recordExchange(degraded bool) {
	if degraded {
		s.metrics.RecordExchange("degraded")
		return
	}
	s.metrics.RecordExchange("ok")
}

// ============================================================================
// Rate shopping
// ============================================================================

type shopRatesRequest struct {
	rateshop.Request
	SortBy string `json:"sort_by,omitempty"`
}

type shopRatesResponse struct {
	Results []rateshop.Result `json:"results"`
}

func (s *Server) handleShopRates(w http.ResponseWriter, r *http.Request) {
	var req shopRatesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	results := s.registry.Shop(r.Context(), &req.Request)

	sortKey := rateshop.SortByPrice
	if req.SortBy == string(rateshop.SortByTransit) {
		sortKey = rateshop.SortByTransit
	}
	rateshop.Sort(results, sortKey)
	rateshop.Recommend(results, s.recommendMaxTransit)

	for _, res := range results {
		if res.OK() {
			s.metrics.RecordRequest("shop_rates", res.Carrier, "ok", time.Since(start).Seconds())
			continue
		}
		s.metrics.RecordRequest("shop_rates", res.Carrier, "error", time.Since(start).Seconds())
		s.metrics.RecordCarrierError(res.Carrier, "quote_failed")
	}

	writeJSON(w, http.StatusOK, shopRatesResponse{Results: results})
}

// ============================================================================
// Bookings
// ============================================================================

type createBookingRequest struct {
	QuoteID    string `json:"quote_id"`
	PickupDate string `json:"pickup_date"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.QuoteID == "" || req.PickupDate == "" {
		writeError(w, http.StatusBadRequest, "quote_id and pickup_date are required")
		return
	}

	booking, err := s.data.CreateBooking(r.Context(), req.QuoteID, req.PickupDate)
	if err != nil {
		s.metrics.RecordRequest("create_booking", "", "error", 0)
		writeUpstreamError(w, err)
		return
	}
	s.metrics.RecordRequest("create_booking", booking.CarrierName, "ok", 0)
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.data.Bookings(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ============================================================================
// Shipments
// ============================================================================

func listFiltersFromQuery(r *http.Request) *dataplane.ListFilters {
	filters := &dataplane.ListFilters{
		Status: r.URL.Query().Get("status"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			filters.Limit = n
		}
	}
	return filters
}

func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := s.data.Shipments(r.Context(), listFiltersFromQuery(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipments)
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipment, err := s.data.Shipment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shipment)
}

func (s *Server) handleTrackShipment(w http.ResponseWriter, r *http.Request) {
	events, err := s.data.TrackShipment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// ============================================================================
// Quotes
// ============================================================================

func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.data.Quotes(r.Context(), listFiltersFromQuery(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := s.data.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var input dataplane.QuoteInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	quote, err := s.data.CreateQuote(r.Context(), &input)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quote)
}

// ============================================================================
// Containers
// ============================================================================

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := s.data.Containers(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, containers)
}

func (s *Server) handleGetContainer(w http.ResponseWriter, r *http.Request) {
	container, err := s.data.Container(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, container)
}

func (s *Server) handleRefreshContainer(w http.ResponseWriter, r *http.Request) {
	container, err := s.data.RefreshContainer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, container)
}

// ============================================================================
// Documents
// ============================================================================

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.data.Documents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	docType := r.FormValue("document_type")
	if docType == "" {
		docType = "other"
	}

	doc, err := s.data.UploadDocument(r.Context(), chi.URLParam(r, "id"), header.Filename, docType, file)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// ============================================================================
// Agents
// ============================================================================

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.data.Agents(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func agentID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id, err := agentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}
	agent, err := s.data.Agent(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

type runAgentRequest struct {
	Input   string         `json:"input"`
	Context map[string]any `json:"context,omitempty"`
}

func (s *Server) handleRunAgent(w http.ResponseWriter, r *http.Request) {
	id, err := agentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}
	var req runAgentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	run, err := s.data.RunAgent(r.Context(), id, req.Input, req.Context)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ============================================================================
// Chat
// ============================================================================

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	convos, err := s.data.Conversations(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convos)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.data.Messages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	msg, err := s.data.SendMessage(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ============================================================================
// Dispatch
// ============================================================================

func (s *Server) handleListDispatchTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.data.DispatchTasks(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleUpdateDispatchTask(w http.ResponseWriter, r *http.Request) {
	var update dataplane.DispatchTaskUpdate
	if err := decodeBody(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	task, err := s.data.UpdateDispatchTask(r.Context(), chi.URLParam(r, "id"), &update)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
