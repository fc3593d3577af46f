package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sfbilling/sfbilling/pkg/types"
)

// Health fetches the server's health status. It does not need an API key.
func (c *Client) Health() (*types.HealthStatus, error) {
	u, err := c.constructURL("/health")
	if err != nil {
		return nil, fmt.Errorf("failed to construct health URL: %w", err)
	}

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var h types.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &h, nil
}

// ListTools fetches the definitions of all tools, in the server's order.
func (c *Client) ListTools() ([]types.ToolDefinition, error) {
	u, err := c.constructAPIEndpoint("/tools")
	if err != nil {
		return nil, fmt.Errorf("failed to construct API endpoint: %w", err)
	}

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var listResp types.ListToolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return listResp.Tools, nil
}

// GetTool returns the definition of a single tool.
// The API has no per-tool endpoint, so this filters the full listing.
func (c *Client) GetTool(name string) (*types.ToolDefinition, error) {
	tools, err := c.ListTools()
	if err != nil {
		return nil, err
	}
	for _, t := range tools {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("tool '%s' not found", name)
}

// InvokeTool runs a tool on the server and returns its result envelope.
// A result with Success false is returned as is, not as an error.
func (c *Client) InvokeTool(name string, params map[string]any) (*types.ToolResult, error) {
	u, err := c.constructAPIEndpoint("/tools/" + url.PathEscape(name))
	if err != nil {
		return nil, fmt.Errorf("failed to construct API endpoint: %w", err)
	}
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameters: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, u, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var result types.ToolResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
