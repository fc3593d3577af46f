package tool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sfbilling/sfbilling/internal/telemetry"
	"github.com/sfbilling/sfbilling/pkg/types"
	"go.uber.org/zap"
)

// DispatcherConfig holds the dependencies of a Dispatcher.
type DispatcherConfig struct {
	Registry *Registry

	// ValidateParams enables checking parameters against the tool's input schema
	// (types and enums) before the handler runs. Schema defaults are applied either way.
	ValidateParams bool

	Logger  *zap.Logger
	Metrics telemetry.CustomMetrics
}

// Dispatcher executes named tools and normalizes every outcome into a ToolResult.
type Dispatcher struct {
	registry       *Registry
	schemas        map[string]*jsonschema.Resolved
	validateParams bool

	logger  *zap.Logger
	metrics telemetry.CustomMetrics
}

// NewDispatcher creates a dispatcher over the given registry.
// It fails if any tool's input schema is malformed.
func NewDispatcher(c *DispatcherConfig) (*Dispatcher, error) {
	if c.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	d := &Dispatcher{
		registry:       c.Registry,
		schemas:        make(map[string]*jsonschema.Resolved, c.Registry.Len()),
		validateParams: c.ValidateParams,
		logger:         c.Logger,
		metrics:        c.Metrics,
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.metrics == nil {
		d.metrics = telemetry.NewNoopCustomMetrics()
	}

	for _, desc := range c.Registry.descriptors {
		rs, err := resolveSchema(desc.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("invalid input schema for tool %s: %w", desc.Name, err)
		}
		d.schemas[desc.Name] = rs
	}
	return d, nil
}

// Registry returns the registry the dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// ListTools returns the public definitions of all tools in registration order.
func (d *Dispatcher) ListTools() []types.ToolDefinition {
	return d.registry.List()
}

// ExecuteTool runs the named tool with the given parameters.
// It never panics and never returns nil: every failure is reported as a ToolResult
// with Success set to false.
func (d *Dispatcher) ExecuteTool(ctx context.Context, name string, params map[string]any) (result *types.ToolResult) {
	start := time.Now()
	outcome := telemetry.ToolCallOutcomeError
	defer func() {
		d.metrics.RecordToolCall(ctx, name, outcome, time.Since(start))
	}()

	desc, ok := d.registry.Find(name)
	if !ok {
		outcome = telemetry.ToolCallOutcomeUnknown
		d.logger.Warn("tool not found", zap.String("tool", name))
		return types.NewErrorResult(fmt.Sprintf("Tool '%s' not found", name))
	}

	p := Params(params).clone()
	d.logger.Info("executing tool", zap.String("tool", name), zap.Any("params", params))

	if rs := d.schemas[name]; rs != nil {
		if d.validateParams {
			if err := rs.Validate(map[string]any(p)); err != nil {
				d.logger.Warn("tool parameters rejected", zap.String("tool", name), zap.Error(err))
				return types.NewErrorResult(fmt.Sprintf("Invalid parameters for tool '%s': %v", name, err))
			}
		}
		if err := rs.ApplyDefaults((*map[string]any)(&p)); err != nil {
			d.logger.Warn("failed to apply parameter defaults", zap.String("tool", name), zap.Error(err))
		}
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = telemetry.ToolCallOutcomeError
			d.logger.Error("tool panicked",
				zap.String("tool", name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			result = types.NewErrorResult(panicMessage(r))
		}
	}()

	res, err := desc.Handler(ctx, p)
	if err != nil {
		d.logger.Error("tool failed", zap.String("tool", name), zap.Error(err))
		return types.NewErrorResult(err.Error())
	}
	if res == nil {
		d.logger.Error("tool returned no result", zap.String("tool", name))
		return types.NewErrorResult(fmt.Sprintf("Tool '%s' returned no result", name))
	}

	if res.Success {
		outcome = telemetry.ToolCallOutcomeSuccess
		d.logger.Info("tool completed",
			zap.String("tool", name),
			zap.Int("record_count", res.RecordCount()),
			zap.Duration("elapsed", time.Since(start)),
		)
	} else {
		d.logger.Warn("tool reported failure", zap.String("tool", name), zap.String("error", res.Error))
	}
	return res
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
