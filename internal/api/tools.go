package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sfbilling/sfbilling/pkg/types"
)

func (s *Server) listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, &types.ListToolsResponse{
			Success: true,
			Tools:   s.dispatcher.ListTools(),
		})
	}
}

// executeToolHandler runs the tool named in the path with the JSON body as its parameters.
func (s *Server) executeToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		params, err := bindParams(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: err.Error()})
			return
		}
		result := s.dispatcher.ExecuteTool(c.Request.Context(), c.Param("toolName"), params)
		c.JSON(http.StatusOK, result)
	}
}

// invokeToolHandler runs the tool named in the request body.
func (s *Server) invokeToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.InvokeToolRequest
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: err.Error()})
			return
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &req); err != nil {
				c.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: err.Error()})
				return
			}
		}
		if req.Tool == "" {
			c.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "Tool name is required"})
			return
		}

		result := s.dispatcher.ExecuteTool(c.Request.Context(), req.Tool, req.Parameters)
		c.JSON(http.StatusOK, result)
	}
}

// bindParams decodes the request body as a JSON object. An empty body yields no parameters.
func bindParams(c *gin.Context) (map[string]any, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	params := make(map[string]any)
	if len(bytes.TrimSpace(raw)) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	return params, nil
}
