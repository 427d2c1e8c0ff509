package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hibiken/asynq"
)

// GetEnvVariable reads an environment variable with a fallback
func GetEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// UnmarshalTask decodes the JSON payload of an asynq task
func UnmarshalTask(t *asynq.Task, dest interface{}) error {
	if len(t.Payload()) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", t.Type(), err)
	}
	return nil
}

// ContainsFold reports whether substr is within s, case-insensitively
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func StringPtr(s string) *string {
	return &s
}

// TrimToNil returns nil for blank strings
func TrimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
