package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all FraudGuard tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("fraudguard", "1.0.0")
	client := NewAPIClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolAssessTransaction, h.HandleAssessTransaction)
	s.AddTool(ToolCheckPolicy, h.HandleCheckPolicy)
	s.AddTool(ToolGetProfile, h.HandleGetProfile)
	s.AddTool(ToolListTransactions, h.HandleListTransactions)

	return s
}
