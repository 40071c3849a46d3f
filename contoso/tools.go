package contoso

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	agenteval "github.com/PreiyaaKedia/agent-evaluation-v2"
)

// stampID generates a timestamped identifier like RFD-20260205143000.
func stampID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, time.Now().Format("20060102150405"))
}

func decodeArgs(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// orderStatusTool checks the status of an order against the order table.
type orderStatusTool struct {
	orders map[string]Order
}

func (t orderStatusTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "check_order_status",
		Description: "Check the status of a customer order by order number",
		Parameters: objectSchema(map[string]any{
			"order_number": stringProp("The order number (e.g., ORD-2024-5678)"),
		}, []string{"order_number"}),
		Strict: true,
	}
}

func (t orderStatusTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		OrderNumber string `json:"order_number"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	order, ok := t.orders[in.OrderNumber]
	if !ok {
		return map[string]any{"error": "Order not found", "order_number": in.OrderNumber}, nil
	}

	items := make([]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{"name": item.Name, "quantity": item.Quantity})
	}
	return map[string]any{
		"status":             order.Status,
		"items":              items,
		"tracking":           order.Tracking,
		"estimated_delivery": order.EstimatedDelivery,
		"location":           order.Location,
		"order_date":         order.OrderDate,
		"total":              order.Total,
	}, nil
}

// refundTool processes a refund for an order in the order table.
type refundTool struct {
	orders map[string]Order
}

func (t refundTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "process_refund",
		Description: "Process a refund for an order",
		Parameters: objectSchema(map[string]any{
			"order_number": stringProp("The order number to refund"),
			"reason":       stringProp("Reason for the refund"),
		}, []string{"order_number", "reason"}),
		Strict: true,
	}
}

func (t refundTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		OrderNumber string `json:"order_number"`
		Reason      string `json:"reason"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	order, ok := t.orders[in.OrderNumber]
	if !ok {
		return map[string]any{
			"success":   false,
			"message":   fmt.Sprintf("Order %s not found in system", in.OrderNumber),
			"refund_id": nil,
		}, nil
	}

	reason := in.Reason
	if reason == "" {
		reason = "Customer request"
	}
	return map[string]any{
		"success":         true,
		"message":         fmt.Sprintf("Refund processed successfully for order %s", in.OrderNumber),
		"refund_id":       stampID("RFD"),
		"amount":          order.Total,
		"processing_time": "5-7 business days",
		"reason":          reason,
	}, nil
}

// cancelOrderTool cancels an order that has not shipped yet.
type cancelOrderTool struct {
	orders map[string]Order
}

func (t cancelOrderTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "cancel_order",
		Description: "Cancel an order if it hasn't shipped yet",
		Parameters: objectSchema(map[string]any{
			"order_number": stringProp("The order number to cancel"),
		}, []string{"order_number"}),
		Strict: true,
	}
}

func (t cancelOrderTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		OrderNumber string `json:"order_number"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	order, ok := t.orders[in.OrderNumber]
	if !ok {
		return map[string]any{
			"success": false,
			"message": fmt.Sprintf("Order %s not found", in.OrderNumber),
		}, nil
	}

	switch order.Status {
	case "Shipped", "In Transit", "Delivered":
		return map[string]any{
			"success": false,
			"message": fmt.Sprintf("Order %s has already shipped. Please initiate a return instead.", in.OrderNumber),
			"status":  order.Status,
		}, nil
	}

	return map[string]any{
		"success":           true,
		"message":           fmt.Sprintf("Order %s has been canceled successfully", in.OrderNumber),
		"refund_processing": "3-5 business days",
	}, nil
}

// emailTool simulates sending an email.
type emailTool struct{}

func (emailTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "send_email",
		Description: "Send an email to a recipient",
		Parameters: objectSchema(map[string]any{
			"to":      stringProp("Email recipient address"),
			"subject": stringProp("Email subject"),
			"body":    stringProp("Email body content"),
			"cc":      stringProp("CC email address (optional)"),
		}, []string{"to", "subject", "body", "cc"}),
		Strict: true,
	}
}

func (emailTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
		CC      string `json:"cc"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	var cc any
	if in.CC != "" {
		cc = in.CC
	}
	return map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("Email sent successfully to %s", in.To),
		"message_id": stampID("MSG"),
		"to":         in.To,
		"subject":    in.Subject,
		"sent_at":    time.Now().Format(time.RFC3339),
		"cc":         cc,
	}, nil
}

// salesforceTool simulates updating a customer profile in Salesforce CRM.
type salesforceTool struct{}

func (salesforceTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "update_customer_profile_salesforce",
		Description: "Update customer profile in Salesforce CRM",
		Parameters: objectSchema(map[string]any{
			"customer_id": stringProp("Customer ID (optional)"),
			"phone":       stringProp("Phone number to update"),
			"email":       stringProp("Email address to update"),
			"address":     stringProp("Address to update"),
		}, []string{"customer_id", "phone", "email", "address"}),
		Strict: true,
	}
}

func (salesforceTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var updates map[string]any
	if err := decodeArgs(args, &updates); err != nil {
		return nil, err
	}

	customerID, _ := updates["customer_id"].(string)
	if customerID == "" {
		customerID = stampID("SF")
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		if field == "customer_id" {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	updated := make([]string, 0, len(fields))
	for _, field := range fields {
		updated = append(updated, fmt.Sprintf("%s: %v", field, updates[field]))
	}

	return map[string]any{
		"success":        true,
		"message":        "Customer profile updated successfully in Salesforce",
		"customer_id":    customerID,
		"updated_fields": updated,
		"synced_systems": []string{"Salesforce CRM", "Contoso Order Management", "Email Notification Service"},
		"timestamp":      time.Now().Format(time.RFC3339),
	}, nil
}

// crmProfileTool simulates retrieving a customer profile from the CRM.
type crmProfileTool struct{}

func (crmProfileTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "get_customer_profile_crm",
		Description: "Retrieve customer profile from CRM system",
		Parameters: objectSchema(map[string]any{
			"customer_id": stringProp("Customer ID"),
			"email":       stringProp("Customer email"),
		}, []string{"customer_id", "email"}),
		Strict: true,
	}
}

func (crmProfileTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		CustomerID string `json:"customer_id"`
		Email      string `json:"email"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	if in.CustomerID == "" {
		in.CustomerID = "CRM-12345"
	}
	if in.Email == "" {
		in.Email = "customer@example.com"
	}
	return map[string]any{
		"customer_id":     in.CustomerID,
		"email":           in.Email,
		"name":            "John Smith",
		"phone":           "(555) 123-4567",
		"address":         "123 Main Street, Seattle, WA 98101",
		"loyalty_tier":    "Gold",
		"lifetime_value":  "$2,450.00",
		"orders_count":    8,
		"last_order_date": "January 28, 2026",
	}, nil
}

// supportTicketTool simulates creating a support ticket in the ERP system.
type supportTicketTool struct{}

func (supportTicketTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "create_support_ticket_erp",
		Description: "Create a support ticket in ERP system",
		Parameters: objectSchema(map[string]any{
			"issue_type":  stringProp("Type of issue (e.g., technical, billing, shipping)"),
			"description": stringProp("Detailed description of the issue"),
			"priority":    stringProp("Priority level: low, medium, or high"),
		}, []string{"issue_type", "description", "priority"}),
		Strict: true,
	}
}

func (supportTicketTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		IssueType   string `json:"issue_type"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	if in.Priority == "" {
		in.Priority = "medium"
	}
	sla := "24 hours"
	if in.Priority == "high" {
		sla = "4 hours"
	}
	return map[string]any{
		"success":           true,
		"ticket_id":         stampID("TKT"),
		"issue_type":        in.IssueType,
		"description":       in.Description,
		"priority":          in.Priority,
		"status":            "Open",
		"assigned_to":       "Support Team",
		"created_at":        time.Now().Format(time.RFC3339),
		"sla_response_time": sla,
	}, nil
}

// availabilityTool checks product availability against the inventory table.
type availabilityTool struct {
	inventory map[string]Stock
}

func (t availabilityTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "check_product_availability",
		Description: "Check if a product is in stock",
		Parameters: objectSchema(map[string]any{
			"product_name":   stringProp("Name of the product"),
			"store_location": stringProp("Store location (Online, Seattle, New York)"),
		}, []string{"product_name", "store_location"}),
		Strict: true,
	}
}

func (t availabilityTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		ProductName   string `json:"product_name"`
		StoreLocation string `json:"store_location"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.StoreLocation == "" {
		in.StoreLocation = "Online"
	}

	names := make([]string, 0, len(t.inventory))
	for name := range t.inventory {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.Contains(strings.ToLower(name), strings.ToLower(in.ProductName)) {
			continue
		}
		stock := t.inventory[name]
		delivery := "Same day pickup"
		if strings.EqualFold(in.StoreLocation, "online") {
			delivery = "2-3 business days"
		}
		return map[string]any{
			"product":   name,
			"available": true,
			"stock_levels": map[string]any{
				"online":   stock.Online,
				"seattle":  stock.Seattle,
				"new_york": stock.NewYork,
			},
			"estimated_delivery": delivery,
		}, nil
	}

	return map[string]any{
		"product":   in.ProductName,
		"available": false,
		"message":   "Product not found or out of stock",
	}, nil
}

// installationTool simulates scheduling a product installation.
type installationTool struct{}

func (installationTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "schedule_installation",
		Description: "Schedule product installation service",
		Parameters: objectSchema(map[string]any{
			"order_number":   stringProp("Order number for installation"),
			"preferred_date": stringProp("Preferred installation date (YYYY-MM-DD format)"),
			"time_slot":      stringProp("Preferred time slot: morning or afternoon"),
		}, []string{"order_number", "preferred_date", "time_slot"}),
		Strict: true,
	}
}

func (installationTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		OrderNumber   string `json:"order_number"`
		PreferredDate string `json:"preferred_date"`
		TimeSlot      string `json:"time_slot"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	slot := "Afternoon (1PM-5PM)"
	if strings.EqualFold(in.TimeSlot, "morning") {
		slot = "Morning (8AM-12PM)"
	}
	return map[string]any{
		"success":             true,
		"confirmation_number": stampID("INST"),
		"order_number":        in.OrderNumber,
		"scheduled_date":      in.PreferredDate,
		"time_slot":           slot,
		"technician":          "Contoso Certified Installer",
		"contact":             "1-800-CONTOSO",
		"message":             "Installation scheduled successfully. You will receive a confirmation email and SMS reminder 24 hours before.",
	}, nil
}

// warrantyTool simulates filing a warranty claim.
type warrantyTool struct{}

func (warrantyTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "process_warranty_claim",
		Description: "Process a warranty claim for a product",
		Parameters: objectSchema(map[string]any{
			"product_id":        stringProp("Product ID or serial number"),
			"issue_description": stringProp("Description of the issue with the product"),
		}, []string{"product_id", "issue_description"}),
		Strict: true,
	}
}

func (warrantyTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		ProductID        string `json:"product_id"`
		IssueDescription string `json:"issue_description"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	return map[string]any{
		"success":              true,
		"claim_id":             stampID("WRN"),
		"product_id":           in.ProductID,
		"issue":                in.IssueDescription,
		"status":               "Under Review",
		"next_steps":           "Our warranty team will contact you within 24-48 hours to assess the claim",
		"estimated_resolution": "5-7 business days",
		"coverage_verified":    true,
	}, nil
}

// NewRegistry builds the Contoso tool registry over the given reference
// data. The data is shared read-only between tools.
func NewRegistry(data Data) *agenteval.Registry {
	return agenteval.NewRegistry(
		orderStatusTool{orders: data.Orders},
		refundTool{orders: data.Orders},
		cancelOrderTool{orders: data.Orders},
		emailTool{},
		salesforceTool{},
		crmProfileTool{},
		supportTicketTool{},
		availabilityTool{inventory: data.Inventory},
		installationTool{},
		warrantyTool{},
	)
}
