package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldStudent   = "student"
	FieldCourse    = "course"
	FieldFile      = "file"
	FieldStage     = "stage"
	FieldMonth     = "month"
	FieldYear      = "year"
	FieldPages     = "pages"
	FieldTotal     = "total_hkd"
	FieldPath      = "path"
	FieldChatID    = "chat_id"
	FieldNoteID    = "note_id"
	FieldLedgerRef = "ledger_ref"
	FieldWord      = "word"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentTuition = "tuition"
	ComponentReport  = "report"
	ComponentVocab   = "vocab"
	ComponentBot     = "bot"
	ComponentLLM     = "llm"
	ComponentNotes   = "notes"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentLedger  = "ledger"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpParse     = "parse"
	OpAggregate = "aggregate"
	OpTotal     = "total"
	OpRender    = "render"
	OpRecord    = "record"
	OpPublish   = "publish"
	OpAppend    = "append"
	OpSync      = "sync"
	OpTranslate = "translate"
	OpChat      = "chat"
	OpDownload  = "download"
	OpExport    = "export"
	OpValidate  = "validate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithFile adds the source file and the pipeline stage that touched it
func (f LogFields) WithFile(file, stage string) LogFields {
	f[FieldFile] = file
	if stage != "" {
		f[FieldStage] = stage
	}
	return f
}

// WithNote adds debit-note fields
func (f LogFields) WithNote(student, course string, pages int, total int64) LogFields {
	f[FieldStudent] = student
	f[FieldCourse] = course
	f[FieldPages] = pages
	f[FieldTotal] = total
	return f
}

// WithChat adds the Telegram chat id
func (f LogFields) WithChat(chatID int64) LogFields {
	f[FieldChatID] = chatID
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
