package contoso

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, name string, args map[string]any) map[string]any {
	t.Helper()
	reg := NewRegistry(DefaultData())
	tool, ok := reg.Lookup(name)
	require.True(t, ok, "tool %s not registered", name)

	raw, err := json.Marshal(args)
	require.NoError(t, err)
	result, err := tool.Execute(context.Background(), raw)
	require.NoError(t, err)
	return result
}

func TestRegistryContainsAllTools(t *testing.T) {
	reg := NewRegistry(DefaultData())
	want := []string{
		"check_order_status",
		"process_refund",
		"cancel_order",
		"send_email",
		"update_customer_profile_salesforce",
		"get_customer_profile_crm",
		"create_support_ticket_erp",
		"check_product_availability",
		"schedule_installation",
		"process_warranty_claim",
	}
	assert.ElementsMatch(t, want, reg.Names())

	for _, def := range reg.Definitions() {
		assert.Equal(t, "function", def.Type)
		assert.NotEmpty(t, def.Description, "tool %s has no description", def.Name)
		assert.NotNil(t, def.Parameters, "tool %s has no schema", def.Name)
	}
}

func TestCheckOrderStatus(t *testing.T) {
	result := execute(t, "check_order_status", map[string]any{"order_number": "ORD-2024-5678"})
	assert.Equal(t, "In Transit", result["status"])
	assert.Equal(t, "TRK-987654321", result["tracking"])
	assert.Equal(t, "$708.48", result["total"])

	missing := execute(t, "check_order_status", map[string]any{"order_number": "ORD-0000-0000"})
	assert.Equal(t, "Order not found", missing["error"])
	assert.Equal(t, "ORD-0000-0000", missing["order_number"])
}

func TestProcessRefund(t *testing.T) {
	result := execute(t, "process_refund", map[string]any{
		"order_number": "ORD-2024-1234",
		"reason":       "Defective unit",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "$399.99", result["amount"])
	assert.Equal(t, "Defective unit", result["reason"])
	assert.Contains(t, result["refund_id"], "RFD-")

	missing := execute(t, "process_refund", map[string]any{"order_number": "ORD-9999-9999"})
	assert.Equal(t, false, missing["success"])
	assert.Nil(t, missing["refund_id"])
}

func TestRefundDefaultsReason(t *testing.T) {
	result := execute(t, "process_refund", map[string]any{"order_number": "ORD-2024-5678"})
	assert.Equal(t, "Customer request", result["reason"])
}

func TestCancelOrderShippedIsRejected(t *testing.T) {
	for _, orderNumber := range []string{"ORD-2024-5678", "ORD-2024-1234"} {
		result := execute(t, "cancel_order", map[string]any{"order_number": orderNumber})
		assert.Equal(t, false, result["success"], "order %s", orderNumber)
		assert.Contains(t, result["message"], "already shipped")
	}

	missing := execute(t, "cancel_order", map[string]any{"order_number": "ORD-0000-0000"})
	assert.Equal(t, false, missing["success"])
	assert.Contains(t, missing["message"], "not found")
}

func TestCancelOrderPendingSucceeds(t *testing.T) {
	data := DefaultData()
	data.Orders["ORD-2024-0001"] = Order{Status: "Processing", Total: "$10.00"}
	reg := NewRegistry(data)
	tool, ok := reg.Lookup("cancel_order")
	require.True(t, ok)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"order_number":"ORD-2024-0001"}`))
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "3-5 business days", result["refund_processing"])
}

func TestSendEmail(t *testing.T) {
	result := execute(t, "send_email", map[string]any{
		"to":      "manager@example.com",
		"subject": "Order delay",
		"body":    "My laptop order is delayed.",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "manager@example.com", result["to"])
	assert.Contains(t, result["message_id"], "MSG-")
	assert.Nil(t, result["cc"])

	withCC := execute(t, "send_email", map[string]any{
		"to": "a@example.com", "subject": "s", "body": "b", "cc": "boss@example.com",
	})
	assert.Equal(t, "boss@example.com", withCC["cc"])
}

func TestUpdateCustomerProfileSalesforce(t *testing.T) {
	result := execute(t, "update_customer_profile_salesforce", map[string]any{
		"customer_id": "CRM-12345",
		"phone":       "(555) 123-4567",
		"email":       "new@example.com",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "CRM-12345", result["customer_id"])
	assert.Equal(t, []string{"email: new@example.com", "phone: (555) 123-4567"}, result["updated_fields"])
	assert.Contains(t, result["synced_systems"], "Salesforce CRM")
}

func TestCreateSupportTicketSLA(t *testing.T) {
	high := execute(t, "create_support_ticket_erp", map[string]any{
		"issue_type": "technical", "description": "screen flicker", "priority": "high",
	})
	assert.Equal(t, "4 hours", high["sla_response_time"])
	assert.Equal(t, "Open", high["status"])
	assert.Contains(t, high["ticket_id"], "TKT-")

	medium := execute(t, "create_support_ticket_erp", map[string]any{
		"issue_type": "billing", "description": "double charge",
	})
	assert.Equal(t, "24 hours", medium["sla_response_time"])
	assert.Equal(t, "medium", medium["priority"])
}

func TestCheckProductAvailability(t *testing.T) {
	result := execute(t, "check_product_availability", map[string]any{
		"product_name":   "samsung",
		"store_location": "Seattle",
	})
	assert.Equal(t, true, result["available"])
	assert.Equal(t, "Samsung 55-inch 4K Smart TV", result["product"])
	assert.Equal(t, "Same day pickup", result["estimated_delivery"])

	stock, ok := result["stock_levels"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 12, stock["seattle"])

	online := execute(t, "check_product_availability", map[string]any{"product_name": "Dell XPS"})
	assert.Equal(t, "2-3 business days", online["estimated_delivery"])

	missing := execute(t, "check_product_availability", map[string]any{"product_name": "toaster"})
	assert.Equal(t, false, missing["available"])
	assert.Equal(t, "Product not found or out of stock", missing["message"])
}

func TestScheduleInstallation(t *testing.T) {
	morning := execute(t, "schedule_installation", map[string]any{
		"order_number":   "ORD-2024-5678",
		"preferred_date": "2026-02-10",
		"time_slot":      "morning",
	})
	assert.Equal(t, true, morning["success"])
	assert.Equal(t, "Morning (8AM-12PM)", morning["time_slot"])
	assert.Equal(t, "2026-02-10", morning["scheduled_date"])
	assert.Contains(t, morning["confirmation_number"], "INST-")

	afternoon := execute(t, "schedule_installation", map[string]any{
		"order_number": "ORD-2024-5678", "preferred_date": "2026-02-11", "time_slot": "afternoon",
	})
	assert.Equal(t, "Afternoon (1PM-5PM)", afternoon["time_slot"])
}

func TestProcessWarrantyClaim(t *testing.T) {
	result := execute(t, "process_warranty_claim", map[string]any{
		"product_id":        "XPS15-SN-001",
		"issue_description": "battery not charging",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "Under Review", result["status"])
	assert.Equal(t, true, result["coverage_verified"])
	assert.Contains(t, result["claim_id"], "WRN-")
}

func TestToolSchemasAreStrict(t *testing.T) {
	reg := NewRegistry(DefaultData())
	for _, spec := range reg.Specs() {
		assert.True(t, spec.Strict, "tool %s is not strict", spec.Name)
		props, ok := spec.Parameters["properties"].(map[string]any)
		require.True(t, ok, "tool %s schema has no properties", spec.Name)
		required, ok := spec.Parameters["required"].([]string)
		require.True(t, ok, "tool %s schema has no required list", spec.Name)
		assert.Len(t, required, len(props), "strict schemas require every property: %s", spec.Name)
		assert.Equal(t, false, spec.Parameters["additionalProperties"])
	}
}
