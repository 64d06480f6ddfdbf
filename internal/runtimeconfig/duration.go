package runtimeconfig

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration written as "30s" or "12h" in config files.
// Plain numbers are read as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch value := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(value * float64(time.Second))
	default:
		return fmt.Errorf("duration must be a string or number, got %s", data)
	}
	return nil
}
