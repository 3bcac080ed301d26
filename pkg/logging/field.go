package logging

import "time"

// StringField creates a Field with a string value.
func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// RunField tags an entry with the run it belongs to.
func RunField(runID string) Field {
	return Field{Key: "run_id", Value: runID}
}

// TestField tags an entry with the test it belongs to.
func TestField(name string) Field {
	return Field{Key: "test", Value: name}
}

// StatusField records a test outcome such as "crashed".
func StatusField(status string) Field {
	return Field{Key: "status", Value: status}
}

// DurationField records d in seconds under key+"_seconds", so
// JSON consumers never have to parse Go duration strings.
func DurationField(key string, d time.Duration) Field {
	return Field{Key: key + "_seconds", Value: d.Seconds()}
}

// ErrorField creates a Field for err. A nil error is recorded
// as "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}
