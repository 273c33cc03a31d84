package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldJobID    = "job_id"
	FieldCompany  = "company"
)

// WithFields attaches fields to logger, falling back to a no-op logger when
// logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// JobFields describes a job in log entries. Blank values are left out.
func JobFields(id, company string) []zap.Field {
	return nonEmpty(map[string]string{FieldJobID: id, FieldCompany: company}, FieldJobID, FieldCompany)
}

// ProviderFields describes the agent provider and model. Blank values are left out.
func ProviderFields(provider, model string) []zap.Field {
	return nonEmpty(map[string]string{FieldProvider: provider, FieldModel: model}, FieldProvider, FieldModel)
}

func nonEmpty(values map[string]string, order ...string) []zap.Field {
	result := make([]zap.Field, 0, len(order))
	for _, key := range order {
		if value := strings.TrimSpace(values[key]); value != "" {
			result = append(result, zap.String(key, value))
		}
	}
	return result
}
