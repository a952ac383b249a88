package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *APIClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *APIClient) *Handlers {
	return &Handlers{client: client}
}

// HandleAssessTransaction submits a transaction for a full assessment.
func (h *Handlers) HandleAssessTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	amount := req.GetFloat("amount", 0)
	if amount <= 0 {
		return mcp.NewToolResultError("amount must be positive"), nil
	}
	location := req.GetString("location", "")
	at := req.GetString("at", "")

	raw, err := h.client.Assess(ctx, userID, amount, location, at)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assessment failed: %v", err)), nil
	}

	text, err := formatAssessment(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleCheckPolicy runs the policy pre-check without risk scoring.
func (h *Handlers) HandleCheckPolicy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	amount := req.GetFloat("amount", 0)
	if amount <= 0 {
		return mcp.NewToolResultError("amount must be positive"), nil
	}
	location := req.GetString("location", "")
	at := req.GetString("at", "")

	raw, err := h.client.CheckPolicy(ctx, userID, amount, location, at)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Policy check failed: %v", err)), nil
	}

	text, err := formatPolicyResult(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse policy result: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetProfile returns the user's behavioral profile summary.
func (h *Handlers) HandleGetProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	raw, err := h.client.GetProfile(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get profile: %v", err)), nil
	}

	text, err := formatProfile(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse profile: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListTransactions lists the user's recent transaction records.
func (h *Handlers) HandleListTransactions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	limit := req.GetInt("limit", 20)

	raw, err := h.client.ListTransactions(ctx, userID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list transactions: %v", err)), nil
	}

	text, err := formatTransactionList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse transactions: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

func formatAssessment(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Decision: %s\n", getString(m, "state"))
	if v := getString(m, "transactionId"); v != "" {
		fmt.Fprintf(&sb, "Transaction: %s\n", v)
	}
	if v, ok := getFloat(m, "amount"); ok {
		fmt.Fprintf(&sb, "Amount: %.2f\n", v)
	}

	if ra, ok := m["riskAnalysis"].(map[string]any); ok {
		sb.WriteString("\nRisk analysis:\n")
		fmt.Fprintf(&sb, "  Level: %s", getString(ra, "riskLevel"))
		if z, ok := getFloat(ra, "zScore"); ok {
			fmt.Fprintf(&sb, " (z-score %.2f)", z)
		}
		sb.WriteString("\n")
		if v, ok := getFloat(ra, "complianceScore"); ok {
			fmt.Fprintf(&sb, "  Compliance score: %.0f/100\n", v)
		}
		if est, ok := ra["estimated"].(bool); ok && est {
			sb.WriteString("  Baseline: estimated (new user, no history yet)\n")
		}
		writeFactors(&sb, ra)
	}

	if pr, ok := m["policyResult"].(map[string]any); ok {
		if allowed, ok := pr["allowed"].(bool); ok && !allowed {
			sb.WriteString("\nPolicy violations:\n")
			writeViolations(&sb, pr)
		}
	}

	if en, ok := m["enrichment"].(map[string]any); ok {
		if v, ok := getFloat(en, "riskScore"); ok {
			fmt.Fprintf(&sb, "\nExternal risk signal: %.2f\n", v)
		}
	}

	return sb.String(), nil
}

func formatPolicyResult(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	allowed, _ := m["allowed"].(bool)
	if allowed {
		return "Policy check: ALLOWED. No policy violations.", nil
	}

	var sb strings.Builder
	sb.WriteString("Policy check: BLOCKED\n\nViolations:\n")
	writeViolations(&sb, m)
	return sb.String(), nil
}

func formatProfile(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Profile for %s:\n", getString(m, "userId"))
	if v, ok := m["learningEnabled"].(bool); ok {
		fmt.Fprintf(&sb, "  Baseline learning: %s\n", onOff(v))
	}
	if v, ok := getFloat(m, "transactionCount"); ok {
		fmt.Fprintf(&sb, "  Transactions seen: %.0f\n", v)
	}
	if mean, ok := getFloat(m, "amountMean"); ok && mean > 0 {
		std, _ := getFloat(m, "amountStdDev")
		fmt.Fprintf(&sb, "  Spending baseline: mean %.2f, std dev %.2f\n", mean, std)
	}
	if tr, ok := m["typicalRange"].([]any); ok && len(tr) == 2 {
		lo, _ := tr[0].(float64)
		hi, _ := tr[1].(float64)
		fmt.Fprintf(&sb, "  Typical range: %.2f to %.2f\n", lo, hi)
	}
	if hours, ok := m["preferredHours"].([]any); ok && len(hours) > 0 {
		parts := make([]string, 0, len(hours))
		for _, h := range hours {
			if f, ok := h.(float64); ok {
				parts = append(parts, fmt.Sprintf("%02.0f:00", f))
			}
		}
		fmt.Fprintf(&sb, "  Preferred hours: %s\n", strings.Join(parts, ", "))
	}
	if locs, ok := m["trustedLocations"].([]any); ok && len(locs) > 0 {
		parts := make([]string, 0, len(locs))
		for _, l := range locs {
			if s, ok := l.(string); ok {
				parts = append(parts, s)
			}
		}
		fmt.Fprintf(&sb, "  Trusted locations: %s\n", strings.Join(parts, ", "))
	}

	return sb.String(), nil
}

func formatTransactionList(raw json.RawMessage) (string, error) {
	var resp struct {
		Transactions []map[string]any `json:"transactions"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("unexpected transactions response format")
	}

	if len(resp.Transactions) == 0 {
		return "No transactions recorded for this user.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d transaction(s), newest first:\n\n", len(resp.Transactions))
	for i, tx := range resp.Transactions {
		amount, _ := getFloat(tx, "amount")
		fmt.Fprintf(&sb, "%d. %.2f", i+1, amount)
		if loc := getString(tx, "location"); loc != "" {
			fmt.Fprintf(&sb, " at %s", loc)
		}
		if hour, ok := getFloat(tx, "hour"); ok {
			fmt.Fprintf(&sb, " (%02.0f:00)", hour)
		}
		fmt.Fprintf(&sb, "\n   State: %s", getString(tx, "state"))
		if level := getString(tx, "riskLevel"); level != "" {
			fmt.Fprintf(&sb, " | Risk: %s", level)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func writeFactors(sb *strings.Builder, m map[string]any) {
	factors, ok := m["factors"].([]any)
	if !ok || len(factors) == 0 {
		return
	}
	sb.WriteString("  Factors:\n")
	for _, f := range factors {
		fm, ok := f.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(sb, "    - %s", getString(fm, "message"))
		if d := getString(fm, "detail"); d != "" {
			fmt.Fprintf(sb, " (%s)", d)
		}
		sb.WriteString("\n")
	}
}

func writeViolations(sb *strings.Builder, m map[string]any) {
	violations, ok := m["violations"].([]any)
	if !ok || len(violations) == 0 {
		sb.WriteString("  (no violation details)\n")
		return
	}
	for _, v := range violations {
		vm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(sb, "  - %s: %s\n", getString(vm, "policyName"), getString(vm, "reason"))
	}
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}
