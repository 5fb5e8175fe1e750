package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"revision-runtime/backend/pkg/models"
)

// TransformationService is what the tools delegate to.
type TransformationService interface {
	Documentation(ctx context.Context, id uuid.UUID) (string, error)
	ExecuteDoctest(ctx context.Context, id uuid.UUID, dir string) (*models.DoctestResponse, error)
}

type Server struct {
	mcpServer *server.MCPServer
	service   TransformationService
}

func NewServer(service TransformationService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Revision Runtime",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		service: service,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"generate_documentation",
			mcp.WithDescription("Render the Markdown documentation of a transformation revision"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The ID of the transformation revision")),
		),
		s.handleGenerateDocumentation,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"execute_doctest",
			mcp.WithDescription("Run the examples embedded in a component's code"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The ID of the component revision")),
			mcp.WithString("dir", mcp.Description("Directory the code file is written to")),
		),
		s.handleExecuteDoctest,
	)
}

func revisionID(request mcp.CallToolRequest) (uuid.UUID, map[string]interface{}, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return uuid.Nil, nil, mcp.NewToolResultError("Invalid arguments type")
	}

	raw, ok := args["id"].(string)
	if !ok || raw == "" {
		return uuid.Nil, nil, mcp.NewToolResultError("Missing required parameter: id")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, nil, mcp.NewToolResultError(fmt.Sprintf("Invalid id %q: %v", raw, err))
	}
	return id, args, nil
}

func (s *Server) handleGenerateDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _, errResult := revisionID(request)
	if errResult != nil {
		return errResult, nil
	}

	doc, err := s.service.Documentation(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate documentation: %v", err)), nil
	}

	return mcp.NewToolResultText(doc), nil
}

func (s *Server) handleExecuteDoctest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, args, errResult := revisionID(request)
	if errResult != nil {
		return errResult, nil
	}
	dir, _ := args["dir"].(string)

	res, err := s.service.ExecuteDoctest(ctx, id, dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to execute doctest: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(res)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// SSE transport under /mcp
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
