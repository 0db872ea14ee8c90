package dataplane

// PlatformUser is the platform-side record for a synced user.
type PlatformUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Company   string `json:"company,omitempty"`
	Role      string `json:"role,omitempty"`
	TenantID  string `json:"tenant_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SyncResult is the outcome of exchanging a verified identity for a platform
// bearer token.
type SyncResult struct {
	AuthToken string       `json:"authToken"`
	User      PlatformUser `json:"user"`
}

// Quote is a freight quote record.
type Quote struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	OriginZip       string   `json:"origin_zip"`
	OriginCity      string   `json:"origin_city,omitempty"`
	OriginState     string   `json:"origin_state,omitempty"`
	DestinationZip  string   `json:"destination_zip"`
	DestinationCity string   `json:"destination_city,omitempty"`
	DestinationState string  `json:"destination_state,omitempty"`
	WeightLbs       float64  `json:"weight_lbs"`
	FreightClass    float64  `json:"freight_class,omitempty"`
	Pallets         int      `json:"pallets,omitempty"`
	Accessorials    []string `json:"accessorials,omitempty"`
	TotalPrice      float64  `json:"total_price,omitempty"`
	CarrierName     string   `json:"carrier_name,omitempty"`
	TransitDays     int      `json:"transit_days,omitempty"`
	CreatedAt       string   `json:"created_at"`
	ExpiresAt       string   `json:"expires_at,omitempty"`
}

// QuoteInput is the payload for creating a quote.
type QuoteInput struct {
	OriginZip      string   `json:"origin_zip"`
	DestinationZip string   `json:"destination_zip"`
	WeightLbs      float64  `json:"weight_lbs"`
	FreightClass   float64  `json:"freight_class,omitempty"`
	Pallets        int      `json:"pallets,omitempty"`
	Accessorials   []string `json:"accessorials,omitempty"`
}

// Address is a street address on a shipment.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Shipment is a booked freight shipment.
type Shipment struct {
	ID                 string  `json:"id"`
	QuoteID            string  `json:"quote_id,omitempty"`
	Status             string  `json:"status"`
	OriginAddress      Address `json:"origin_address"`
	DestinationAddress Address `json:"destination_address"`
	CarrierName        string  `json:"carrier_name"`
	CarrierProNumber   string  `json:"carrier_pro_number,omitempty"`
	PickupDate         string  `json:"pickup_date"`
	DeliveryDate       string  `json:"delivery_date,omitempty"`
	WeightLbs          float64 `json:"weight_lbs"`
	Pieces             int     `json:"pieces"`
	CreatedAt          string  `json:"created_at"`
}

// TrackingEvent is one entry in a shipment's tracking history.
type TrackingEvent struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status"`
}

// Booking is a confirmed rate selection.
type Booking struct {
	ID          string `json:"id"`
	QuoteID     string `json:"quote_id"`
	ShipmentID  string `json:"shipment_id,omitempty"`
	Status      string `json:"status"`
	PickupDate  string `json:"pickup_date"`
	CarrierName string `json:"carrier_name"`
	BOLNumber   string `json:"bol_number,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Container is an import container tracked through the CFS flow.
type Container struct {
	ID                string  `json:"id"`
	ContainerNumber   string  `json:"container_number"`
	Status            string  `json:"status"`
	RiskLevel         string  `json:"risk_level"`
	LFDPier           string  `json:"lfd_pier,omitempty"`
	LFDWarehouse      string  `json:"lfd_warehouse,omitempty"`
	FreeTimeRemaining int     `json:"free_time_remaining,omitempty"`
	EstimatedFees     float64 `json:"estimated_fees,omitempty"`
	VesselName        string  `json:"vessel_name,omitempty"`
	PortOfEntry       string  `json:"port_of_entry,omitempty"`
	CFSName           string  `json:"cfs_name,omitempty"`
	LastSynced        string  `json:"last_synced,omitempty"`
}

// Document is a file attached to a shipment.
type Document struct {
	ID         string `json:"id"`
	ShipmentID string `json:"shipment_id"`
	Type       string `json:"type"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// Agent is an automation agent hosted on the platform.
type Agent struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LLM         string `json:"llm,omitempty"`
	Status      string `json:"status"`
	TaskCount   int    `json:"task_count,omitempty"`
	LastRun     string `json:"last_run,omitempty"`
}

// AgentRun is the result of running an agent.
type AgentRun struct {
	AgentID int    `json:"agent_id"`
	Output  string `json:"output"`
	Status  string `json:"status"`
}

// Conversation is a chat thread.
type Conversation struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	AgentID      int    `json:"agent_id,omitempty"`
	LastMessage  string `json:"last_message,omitempty"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Message is a single chat message.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

// DispatchTask is an operational task raised against a container.
type DispatchTask struct {
	ID              string `json:"id"`
	ContainerID     string `json:"container_id"`
	ContainerNumber string `json:"container_number"`
	Type            string `json:"type"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
	DueDate         string `json:"due_date,omitempty"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// DispatchTaskUpdate is a partial update to a dispatch task.
type DispatchTaskUpdate struct {
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}
