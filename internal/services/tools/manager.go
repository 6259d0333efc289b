package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClareAI/astra-reserve-service/internal/adapters/twilio"
	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/internal/services/availability"
	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// TurnState tracks per-turn side effects so the reply path can avoid
// duplicating them. One instance lives for one inbound message.
type TurnState struct {
	MediaSent bool
}

// Context is the caller context every tool executes under.
type Context struct {
	Tenant *tenant.Tenant
	Client *domain.Client
	Turn   *TurnState
}

// ExecutorFunc is the signature of a tool implementation. It returns a
// JSON-serializable result; errors become {"error": ...} results for the
// assistant, never aborted runs.
type ExecutorFunc func(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error)

// ToolDefinition defines a tool with its metadata and execution logic
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	// MinSalesLevel hides the tool from assistants configured below it.
	MinSalesLevel int
	Executor      ExecutorFunc
}

// Manager manages tool definitions, routing, and execution
type Manager struct {
	repos     repository.RepositoryManager
	oracle    *availability.Oracle
	messenger twilio.Messenger
	menuDocs  MenuDocumentProvider
	validate  *validator.Validate
	registry  map[string]*ToolDefinition
	order     []string
}

// MenuDocumentProvider locates the tenant's menu document for the PDF tool.
type MenuDocumentProvider interface {
	// MenuDocumentURL returns the public URL of the organization's document
	// named "menu", or an empty string when none exists.
	MenuDocumentURL(ctx context.Context, org *domain.Organization) (string, error)
}

// NewManager creates a tool manager and registers all built-in tools.
func NewManager(repos repository.RepositoryManager, oracle *availability.Oracle, messenger twilio.Messenger, menuDocs MenuDocumentProvider) *Manager {
	m := &Manager{
		repos:     repos,
		oracle:    oracle,
		messenger: messenger,
		menuDocs:  menuDocs,
		validate:  validator.New(),
		registry:  make(map[string]*ToolDefinition),
	}
	m.registerBuiltInTools()
	return m
}

// registerBuiltInTools registers all built-in tools. This is the single place
// to add new tools.
func (m *Manager) registerBuiltInTools() {
	m.RegisterTool(&ToolDefinition{
		Name:        "get_restaurant_information",
		Description: "Get information about the restaurant: name, phone number, email, website, address, location, opening hours, contact info or everything.",
		Parameters:  RestaurantInformationSchema,
		Executor:    m.ExecuteGetRestaurantInformation,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "send_menu_pdf",
		Description: "Send the restaurant's menu document to the customer on WhatsApp. Call when the customer asks to see the menu.",
		Parameters:  EmptySchema,
		Executor:    m.ExecuteSendMenuPDF,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "get_menu_items",
		Description: "List active menu items filtered by category and classification. Both filters are required.",
		Parameters:  MenuItemsSchema,
		Executor:    m.ExecuteGetMenuItems,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "get_available_tables",
		Description: "Check which tables are available for a date, optional time, and party size. Suggests alternative times when the requested one is full.",
		Parameters:  AvailableTablesSchema,
		Executor:    m.ExecuteGetAvailableTables,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "book_table",
		Description: "Book a table for the customer. Requires name, date, time and number of guests; optionally records phone, occasion, promo code and profile details.",
		Parameters:  BookTableSchema,
		Executor:    m.ExecuteBookTable,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "add_menu_to_reservation",
		Description: "Pre-order menu items onto an existing reservation.",
		Parameters:  AddMenuToReservationSchema,
		Executor:    m.ExecuteAddMenuToReservation,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "reschedule_reservation",
		Description: "Move an existing reservation to a new date or time. The original reservation is kept and marked rescheduled.",
		Parameters:  RescheduleReservationSchema,
		Executor:    m.ExecuteRescheduleReservation,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "cancel_reservation",
		Description: "Cancel the customer's reservation. A reason is required.",
		Parameters:  CancelReservationSchema,
		Executor:    m.ExecuteCancelReservation,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "get_customer_reservations",
		Description: "List the customer's reservations on a date with a given status.",
		Parameters:  CustomerReservationsSchema,
		Executor:    m.ExecuteGetCustomerReservations,
	})
	m.RegisterTool(&ToolDefinition{
		Name:          "get_priority_menu_items",
		Description:   "List menu items the restaurant wants to promote, with their upselling priority.",
		Parameters:    EmptySchema,
		MinSalesLevel: 3,
		Executor:      m.ExecuteGetPriorityMenuItems,
	})
	m.RegisterTool(&ToolDefinition{
		Name:          "get_personalized_recommendations",
		Description:   "Recommend menu items based on what the customer ordered on past visits.",
		Parameters:    RecommendationsSchema,
		MinSalesLevel: 3,
		Executor:      m.ExecuteGetPersonalizedRecommendations,
	})
	m.RegisterTool(&ToolDefinition{
		Name:          "get_available_promotions",
		Description:   "List currently running promotions and their rewards.",
		Parameters:    EmptySchema,
		MinSalesLevel: 2,
		Executor:      m.ExecuteGetAvailablePromotions,
	})
	m.RegisterTool(&ToolDefinition{
		Name:        "client_profile_update",
		Description: "Update the customer's stored profile: preferences, allergens, date of birth, anniversary date.",
		Parameters:  ProfileUpdateSchema,
		Executor:    m.ExecuteClientProfileUpdate,
	})
}

// RegisterTool registers a tool definition.
func (m *Manager) RegisterTool(tool *ToolDefinition) {
	if _, exists := m.registry[tool.Name]; !exists {
		m.order = append(m.order, tool.Name)
	}
	m.registry[tool.Name] = tool
	logger.Base().Debug("registered tool", zap.String("name", tool.Name))
}

// Definitions returns the OpenAI function-tool schema list for a sales level,
// in registration order. Used at assistant-create time.
func (m *Manager) Definitions(salesLevel int) []interface{} {
	tools := make([]interface{}, 0, len(m.order))
	for _, name := range m.order {
		tool := m.registry[name]
		if tool.MinSalesLevel > salesLevel {
			continue
		}
		tools = append(tools, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
	}
	return tools
}

// Execute runs a named tool and returns its JSON result. Tool failures are
// folded into an {"error": ...} payload so the run can continue.
func (m *Manager) Execute(ctx context.Context, toolName, argumentsJSON string, tc *Context) string {
	logger.Base().Info("executing tool",
		zap.String("tool", toolName),
		zap.String("client_id", tc.Client.ID))

	tool, exists := m.registry[toolName]
	if !exists {
		return errorResult(fmt.Sprintf("unknown tool: %s", toolName))
	}
	if tool.MinSalesLevel > tc.Tenant.SalesLevel() {
		return errorResult(fmt.Sprintf("tool %s is not available", toolName))
	}

	result, err := tool.Executor(ctx, tc, json.RawMessage(argumentsJSON))
	if err != nil {
		logger.Base().Warn("tool returned error",
			zap.String("tool", toolName),
			zap.Error(err))
		return errorResult(err.Error())
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return errorResult("internal error serializing tool result")
	}
	return string(payload)
}

// decodeArgs unmarshals and validates a tool's argument struct.
func (m *Manager) decodeArgs(args json.RawMessage, out interface{}) error {
	if len(args) > 0 {
		if err := json.Unmarshal(args, out); err != nil {
			return fmt.Errorf("invalid tool arguments: %v", err)
		}
	}
	if err := m.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid tool arguments: %v", err)
	}
	return nil
}

func errorResult(msg string) string {
	payload, _ := json.Marshal(map[string]string{"error": msg})
	return string(payload)
}
