package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	TelegramToken string

	// LLM
	GeminiAPIKey string
	GeminiModel  string

	// Tuition pipeline
	CodesFile      string
	InputDir       string
	OutputDir      string
	VocabOutputDir string
	FontPath       string
	PDFASCIIOnly   bool
	TutorName      string
	BusinessName   string

	// Vocabulary and chat
	VocabLookupConcurrency int
	ChatRatePerMinute      int

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets ledger
	GoogleSpreadsheetID      string
	LedgerSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Backend selection
	LedgerBackend string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		TelegramToken: getEnv("TG_BOT_TOKEN", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		CodesFile:      getEnv("CODES_FILE", ""),
		InputDir:       getEnv("INPUT_DIR", "tuition_records"),
		OutputDir:      getEnv("OUTPUT_DIR", "tuition_notes"),
		VocabOutputDir: getEnv("VOCAB_OUTPUT_DIR", "review_notes"),
		FontPath:       getEnv("FONT_PATH", ""),
		PDFASCIIOnly:   getEnvBool("PDF_ASCII_ONLY", false),
		TutorName:      getEnv("TUTOR_NAME", "Louis Tsang"),
		BusinessName:   getEnv("BUSINESS_NAME", "Louis English Tutorial Lesson"),

		VocabLookupConcurrency: getEnvInt("VOCAB_LOOKUP_CONCURRENCY", 4),
		ChatRatePerMinute:      getEnvInt("CHAT_RATE_PER_MINUTE", 10),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tutornotes.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tutornotes"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_notes"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		LedgerSheetName:          getEnv("LEDGER_SHEET_NAME", "Debit Notes"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		LedgerBackend: getEnv("LEDGER_BACKEND", "memory"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.LedgerBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	if c.LedgerBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if strings.TrimSpace(c.InputDir) == "" {
		errors = append(errors, "input directory cannot be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty")
	}
	if strings.TrimSpace(c.VocabOutputDir) == "" {
		errors = append(errors, "vocabulary output directory cannot be empty")
	}

	if c.CodesFile != "" {
		if _, err := os.Stat(c.CodesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("codes file does not exist: %s", c.CodesFile))
		}
	}
	if c.FontPath != "" {
		if _, err := os.Stat(c.FontPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("font file does not exist: %s", c.FontPath))
		}
		if c.PDFASCIIOnly {
			errors = append(errors, "FONT_PATH and PDF_ASCII_ONLY cannot both be set")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.VocabLookupConcurrency < 1 || c.VocabLookupConcurrency > 32 {
		errors = append(errors, fmt.Sprintf("invalid vocabulary lookup concurrency %d: must be between 1 and 32", c.VocabLookupConcurrency))
	}

	if c.ChatRatePerMinute < 1 || c.ChatRatePerMinute > 600 {
		errors = append(errors, fmt.Sprintf("invalid chat rate %d: must be between 1 and 600 per minute", c.ChatRatePerMinute))
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateLedgerSync checks the settings the ledger worker needs on top of Validate.
func (c *Config) ValidateLedgerSync() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the ledger worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required for the ledger worker")
	}
	if c.LedgerSheetName == "" {
		errors = append(errors, "LEDGER_SHEET_NAME cannot be empty")
	}
	if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
