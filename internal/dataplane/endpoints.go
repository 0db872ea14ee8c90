package dataplane

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// SyncUser exchanges a verified identity for a platform bearer token.
func (c *Client) SyncUser(ctx context.Context, identityUserID, email string) (*SyncResult, error) {
	body := map[string]string{
		"identity_user_id": identityUserID,
		"email":            email,
	}
	var result SyncResult
	if err := c.Do(ctx, GroupUsers, "/user/sync", http.MethodPost, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFilters narrows list endpoints by status and page size.
type ListFilters struct {
	Status string
	Limit  int
}

func (f *ListFilters) query() string {
	if f == nil {
		return ""
	}
	params := url.Values{}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// Quotes lists quotes, optionally filtered.
func (c *Client) Quotes(ctx context.Context, filters *ListFilters) ([]Quote, error) {
	var quotes []Quote
	if err := c.Do(ctx, GroupQuotes, "/quotes"+filters.query(), http.MethodGet, nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// Quote fetches a single quote.
func (c *Client) Quote(ctx context.Context, id string) (*Quote, error) {
	var quote Quote
	if err := c.Do(ctx, GroupQuotes, "/quotes/"+id, http.MethodGet, nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateQuote creates a quote record.
func (c *Client) CreateQuote(ctx context.Context, input *QuoteInput) (*Quote, error) {
	var quote Quote
	if err := c.Do(ctx, GroupQuotes, "/quotes", http.MethodPost, input, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// Shipments lists shipments, optionally filtered.
func (c *Client) Shipments(ctx context.Context, filters *ListFilters) ([]Shipment, error) {
	var shipments []Shipment
	if err := c.Do(ctx, GroupShipments, "/shipments"+filters.query(), http.MethodGet, nil, &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

// Shipment fetches a single shipment.
func (c *Client) Shipment(ctx context.Context, id string) (*Shipment, error) {
	var shipment Shipment
	if err := c.Do(ctx, GroupShipments, "/shipments/"+id, http.MethodGet, nil, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}

// TrackShipment fetches tracking history for a shipment.
func (c *Client) TrackShipment(ctx context.Context, id string) ([]TrackingEvent, error) {
	var events []TrackingEvent
	if err := c.Do(ctx, GroupTracking, "/track/"+id, http.MethodGet, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Bookings lists bookings.
func (c *Client) Bookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.Do(ctx, GroupBookings, "/bookings", http.MethodGet, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking converts a selected quote plus a pickup date into a booking.
// This is a single provider call with ordinary failure semantics; errors
// surface directly to the caller.
func (c *Client) CreateBooking(ctx context.Context, quoteID, pickupDate string) (*Booking, error) {
	body := map[string]string{
		"quote_id":    quoteID,
		"pickup_date": pickupDate,
	}
	var booking Booking
	if err := c.Do(ctx, GroupBookings, "/bookings", http.MethodPost, body, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Containers lists tracked containers.
func (c *Client) Containers(ctx context.Context) ([]Container, error) {
	var containers []Container
	if err := c.Do(ctx, GroupContainers, "/cfs/containers", http.MethodGet, nil, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// Container fetches a single container.
func (c *Client) Container(ctx context.Context, id string) (*Container, error) {
	var container Container
	if err := c.Do(ctx, GroupContainers, "/cfs/containers/"+id, http.MethodGet, nil, &container); err != nil {
		return nil, err
	}
	return &container, nil
}

// RefreshContainer triggers a re-sync of a container's terminal data.
func (c *Client) RefreshContainer(ctx context.Context, id string) (*Container, error) {
	var container Container
	if err := c.Do(ctx, GroupContainers, fmt.Sprintf("/cfs/containers/%s/refresh", id), http.MethodPost, nil, &container); err != nil {
		return nil, err
	}
	return &container, nil
}

// Documents lists documents attached to a shipment.
func (c *Client) Documents(ctx context.Context, shipmentID string) ([]Document, error) {
	var docs []Document
	if err := c.Do(ctx, GroupDocuments, fmt.Sprintf("/shipments/%s/documents", shipmentID), http.MethodGet, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument uploads a file and attaches it to a shipment.
func (c *Client) UploadDocument(ctx context.Context, shipmentID, filename, docType string, file io.Reader) (*Document, error) {
	var doc Document
	path := fmt.Sprintf("/shipments/%s/documents", shipmentID)
	fields := map[string]string{"document_type": docType}
	if err := c.Upload(ctx, GroupDocuments, path, filename, file, fields, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Agents lists automation agents.
func (c *Client) Agents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := c.Do(ctx, GroupAgents, "/agents", http.MethodGet, nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// Agent fetches a single agent.
func (c *Client) Agent(ctx context.Context, id int) (*Agent, error) {
	var agent Agent
	if err := c.Do(ctx, GroupAgents, fmt.Sprintf("/agent/%d", id), http.MethodGet, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// RunAgent runs an agent with the given input.
func (c *Client) RunAgent(ctx context.Context, id int, input string, runContext map[string]any) (*AgentRun, error) {
	body := map[string]any{"input": input}
	if runContext != nil {
		body["context"] = runContext
	}
	var run AgentRun
	if err := c.Do(ctx, GroupAgents, fmt.Sprintf("/agent/%d/run", id), http.MethodPost, body, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Conversations lists chat threads.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var convos []Conversation
	if err := c.Do(ctx, GroupChat, "/conversations", http.MethodGet, nil, &convos); err != nil {
		return nil, err
	}
	return convos, nil
}

// Messages lists the messages in a conversation.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	var messages []Message
	path := fmt.Sprintf("/conversations/%s/messages", conversationID)
	if err := c.Do(ctx, GroupChat, path, http.MethodGet, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage appends a message to a conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*Message, error) {
	path := fmt.Sprintf("/conversations/%s/messages", conversationID)
	body := map[string]string{"content": content}
	var msg Message
	if err := c.Do(ctx, GroupChat, path, http.MethodPost, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DispatchTasks lists dispatch tasks.
func (c *Client) DispatchTasks(ctx context.Context) ([]DispatchTask, error) {
	var tasks []DispatchTask
	if err := c.Do(ctx, GroupContainers, "/cfs/tasks", http.MethodGet, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateDispatchTask applies a partial update to a dispatch task.
func (c *Client) UpdateDispatchTask(ctx context.Context, id string, update *DispatchTaskUpdate) (*DispatchTask, error) {
	var task DispatchTask
	if err := c.Do(ctx, GroupContainers, "/cfs/tasks/"+id, http.MethodPatch, update, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
