package carrier

// LoginRequest authenticates the static service credential.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued by the carrier.
type LoginResponse struct {
	Token string `json:"token"`
}

// ShipmentItem is the carrier's shape for one order line. Missing fields are
// defaulted rather than rejected; the carrier tolerates placeholders.
type ShipmentItem struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Units        int    `json:"units"`
	SellingPrice int    `json:"selling_price"`
	Discount     string `json:"discount"`
	Tax          string `json:"tax"`
	HSN          int    `json:"hsn"`
}

// CreateShipmentRequest is the adhoc shipment-creation payload.
type CreateShipmentRequest struct {
	OrderID           string         `json:"order_id"`
	OrderDate         string         `json:"order_date"`
	PickupLocation    string         `json:"pickup_location"`
	BillingName       string         `json:"billing_customer_name"`
	BillingLastName   string         `json:"billing_last_name"`
	BillingAddress    string         `json:"billing_address"`
	BillingCity       string         `json:"billing_city"`
	BillingPincode    string         `json:"billing_pincode"`
	BillingState      string         `json:"billing_state"`
	BillingCountry    string         `json:"billing_country"`
	BillingEmail      string         `json:"billing_email"`
	BillingPhone      string         `json:"billing_phone"`
	ShippingIsBilling bool           `json:"shipping_is_billing"`
	OrderItems        []ShipmentItem `json:"order_items"`
	PaymentMethod     string         `json:"payment_method"`
	SubTotal          float64        `json:"sub_total"`
	Length            float64        `json:"length"`
	Breadth           float64        `json:"breadth"`
	Height            float64        `json:"height"`
	Weight            float64        `json:"weight"`
}

// CreateShipmentResponse is the carrier's acknowledgement. ShipmentID may be
// absent even on a 2xx; callers must treat that as a hard failure.
type CreateShipmentResponse struct {
	OrderID     int64  `json:"order_id"`
	ShipmentID  int64  `json:"shipment_id"`
	Status      string `json:"status"`
	AWBCode     string `json:"awb_code"`
	CourierName string `json:"courier_company_name"`

	// Document links the carrier sometimes issues with the creation call
	// itself, ahead of the dedicated generate endpoints.
	ManifestURL string `json:"manifest_url"`
	LabelURL    string `json:"label_url"`
	InvoiceURL  string `json:"invoice_url"`
}

// AssignCourierRequest asks the carrier to allocate a courier and AWB.
type AssignCourierRequest struct {
	ShipmentID int64 `json:"shipment_id"`
	CourierID  int   `json:"courier_id,omitempty"`
}

// AssignCourierResponse surfaces the allocated AWB and courier.
type AssignCourierResponse struct {
	AWBAssignStatus int `json:"awb_assign_status"`
	Response        struct {
		Data struct {
			AWBCode     string `json:"awb_code"`
			CourierID   int    `json:"courier_company_id"`
			CourierName string `json:"courier_name"`
		} `json:"data"`
	} `json:"response"`
}

// PickupRequest schedules pickup for one or more shipments.
type PickupRequest struct {
	ShipmentID []int64 `json:"shipment_id"`
}

// PickupResponse acknowledges a scheduled pickup.
type PickupResponse struct {
	PickupStatus int `json:"pickup_status"`
	Response     struct {
		PickupScheduledDate string `json:"pickup_scheduled_date"`
		PickupTokenNumber   string `json:"pickup_token_number"`
	} `json:"response"`
}

// ManifestRequest generates the manifest document for shipments.
type ManifestRequest struct {
	ShipmentID []int64 `json:"shipment_id"`
}

// ManifestResponse carries the manifest document link.
type ManifestResponse struct {
	Status      int    `json:"status"`
	ManifestURL string `json:"manifest_url"`
}

// LabelRequest generates the shipping label for shipments.
type LabelRequest struct {
	ShipmentID []int64 `json:"shipment_id"`
}

// LabelResponse carries the label document link.
type LabelResponse struct {
	LabelCreated int    `json:"label_created"`
	LabelURL     string `json:"label_url"`
}

// InvoiceRequest prints invoices for carrier order ids.
type InvoiceRequest struct {
	IDs []int64 `json:"ids"`
}

// InvoiceResponse carries the invoice document link.
type InvoiceResponse struct {
	IsInvoiceCreated bool   `json:"is_invoice_created"`
	InvoiceURL       string `json:"invoice_url"`
}

// TrackResponse mirrors the carrier's AWB tracking payload.
type TrackResponse struct {
	TrackingData struct {
		TrackStatus   int `json:"track_status"`
		ShipmentTrack []struct {
			CurrentStatus string `json:"current_status"`
		} `json:"shipment_track"`
	} `json:"tracking_data"`
}

// CurrentStatus returns the latest free-text status, if present.
func (t TrackResponse) CurrentStatus() string {
	if len(t.TrackingData.ShipmentTrack) == 0 {
		return ""
	}
	return t.TrackingData.ShipmentTrack[0].CurrentStatus
}

// CarrierOrder is one entry in the carrier's order listing.
type CarrierOrder struct {
	ID         int64  `json:"id"`
	ChannelID  int64  `json:"channel_id"`
	CustomerID int64  `json:"customer_id"`
	Status     string `json:"status"`
	Total      string `json:"total"`
	CreatedAt  string `json:"created_at"`
}

// ListOrdersResponse pages through carrier-side orders.
type ListOrdersResponse struct {
	Data []CarrierOrder `json:"data"`
}

// apiError is the carrier's error body; only the message is contractual.
type apiError struct {
	Message string `json:"message"`
}
