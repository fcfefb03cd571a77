package logger

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"

	FieldCommand  = "command"
	FieldKey      = "key"
	FieldShape    = "shape"
	FieldCursor   = "cursor"
	FieldSequence = "sequence"
	FieldCount    = "count"
)

// Fields builds a field map from alternating key-value pairs. A trailing
// key without a value is dropped.
//
//	log.Debug("scan step", logger.Fields(logger.FieldCommand, "HSCAN", logger.FieldCount, 2))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
