package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"revision-runtime/backend/pkg/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Documentation(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockService) ExecuteDoctest(ctx context.Context, id uuid.UUID, dir string) (*models.DoctestResponse, error) {
	args := m.Called(ctx, id, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DoctestResponse), args.Error(1)
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestGenerateDocumentationTool(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("Documentation", mock.Anything, id).Return("# Add (Arithmetic)", nil)

	s := NewServer(svc)
	res, err := s.handleGenerateDocumentation(context.Background(), call(map[string]interface{}{"id": id.String()}))
	require.NoError(t, err)

	assert.False(t, res.IsError)
	assert.Equal(t, "# Add (Arithmetic)", text(t, res))
	svc.AssertExpectations(t)
}

func TestGenerateDocumentationTool_InvalidID(t *testing.T) {
	svc := new(MockService)
	s := NewServer(svc)

	res, err := s.handleGenerateDocumentation(context.Background(), call(map[string]interface{}{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGenerateDocumentation(context.Background(), call(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "Missing required parameter: id")

	svc.AssertNotCalled(t, "Documentation", mock.Anything, mock.Anything)
}

func TestExecuteDoctestTool(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("ExecuteDoctest", mock.Anything, id, "/tmp/code").
		Return(&models.DoctestResponse{NofAttempted: 2, NofFailed: 1, Output: "failed"}, nil)

	s := NewServer(svc)
	res, err := s.handleExecuteDoctest(context.Background(), call(map[string]interface{}{"id": id.String(), "dir": "/tmp/code"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got models.DoctestResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, 2, got.NofAttempted)
	assert.Equal(t, 1, got.NofFailed)
	assert.Equal(t, "failed", got.Output)
}

func TestExecuteDoctestTool_ServiceError(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("ExecuteDoctest", mock.Anything, id, "").Return(nil, errors.New("boom"))

	res, err := NewServer(svc).handleExecuteDoctest(context.Background(), call(map[string]interface{}{"id": id.String()}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "boom")
}
