package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the FraudGuard MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolAssessTransaction = mcp.NewTool("assess_transaction",
	mcp.WithDescription(
		"Submit a transaction for a full fraud assessment. "+
			"Runs the user's policy checks first, then anomaly scoring against their spending baseline. "+
			"Returns the decision state (VERIFIED, NEEDS_VERIFICATION, VERIFIED_VIA_BIOMETRIC, "+
			"BLOCKED_BIOMETRIC_FAIL, CANCELLED_BY_USER, POLICY_BLOCKED), "+
			"the risk level, and the reasons behind the decision."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user the transaction belongs to")),
	mcp.WithNumber("amount",
		mcp.Required(),
		mcp.Description("Transaction amount, must be positive")),
	mcp.WithString("location",
		mcp.Description("Transaction location (e.g. 'Mumbai'). Omit if unknown.")),
	mcp.WithString("at",
		mcp.Description("Transaction timestamp in RFC3339 (e.g. '2026-08-31T14:30:00Z'). Defaults to now.")),
)

var ToolCheckPolicy = mcp.NewTool("check_policy",
	mcp.WithDescription(
		"Check a hypothetical transaction against the user's spending policy only, "+
			"without risk scoring and without recording anything. "+
			"Use this to preview whether a transaction would be hard-blocked before submitting it."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user whose policy to check against")),
	mcp.WithNumber("amount",
		mcp.Required(),
		mcp.Description("Transaction amount to check")),
	mcp.WithString("location",
		mcp.Description("Transaction location to check")),
	mcp.WithString("at",
		mcp.Description("Transaction timestamp in RFC3339. Defaults to now.")),
)

var ToolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription(
		"Get a user's behavioral profile: typical spending range, preferred transaction hours, "+
			"trusted locations, and whether baseline learning is enabled. "+
			"Use this to understand what the risk scorer considers normal for the user."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user whose profile to fetch")),
)

var ToolListTransactions = mcp.NewTool("list_transactions",
	mcp.WithDescription(
		"List a user's recent transaction records, newest first. "+
			"Each record shows the amount, location, hour, final decision state, and risk level."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user whose transactions to list")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of records to return (default 20, max 500)")),
)
