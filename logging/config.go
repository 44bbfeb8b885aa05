package logging

import (
	stderrs "errors"
	"path/filepath"
	"strings"
	"sync"

	smerrors "github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

// Config controls the Service. Field tags cover JSON, YAML and TOML so the
// struct can be loaded with the config package.
type Config struct {
	Level                  string `json:"level" yaml:"level" toml:"level" validate:"required,oneof=trace debug info warn error fatal panic"`
	WithTimestamp          bool   `json:"with_timestamp" yaml:"with_timestamp" toml:"with_timestamp"`
	SkipFrameCount         int    `json:"skip_frame_count" yaml:"skip_frame_count" toml:"skip_frame_count" validate:"gte=0,lte=10"`
	ConsoleLogging         bool   `json:"console_logging" yaml:"console_logging" toml:"console_logging"`
	ConsoleNoColor         bool   `json:"console_no_color" yaml:"console_no_color" toml:"console_no_color"`
	ConsoleTimeFormat      string `json:"console_time_format" yaml:"console_time_format" toml:"console_time_format"`
	FileLogging            bool   `json:"file_logging" yaml:"file_logging" toml:"file_logging"`
	RelLogFileDir          string `json:"rel_log_file_dir" yaml:"rel_log_file_dir" toml:"rel_log_file_dir" validate:"omitempty,reldir"`
	FileName               string `json:"file_name" yaml:"file_name" toml:"file_name" validate:"omitempty,excludesall=/\\"`
	BackoffMS              int    `json:"backoff_ms" yaml:"backoff_ms" toml:"backoff_ms" validate:"gte=0"`
	ShutdownTimeoutMS      int    `json:"shutdown_timeout_ms" yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" validate:"gte=0"`
	ShutdownTimeoutWarning bool   `json:"shutdown_timeout_warning" yaml:"shutdown_timeout_warning" toml:"shutdown_timeout_warning"`
}

// DefaultConfig returns an info-level, file-only configuration writing to
// logs/<executable>.log.
func DefaultConfig() Config {
	return Config{
		Level:                  "info",
		WithTimestamp:          true,
		FileLogging:            true,
		RelLogFileDir:          "logs",
		BackoffMS:              int(DefaultBackoff.Milliseconds()),
		ShutdownTimeoutMS:      int(DefaultShutdownTimeout.Milliseconds()),
		ShutdownTimeoutWarning: true,
	}
}

var validate *validator.Validate
var once sync.Once

// ValidateConfig checks cfg against its struct tags.
func ValidateConfig(cfg *Config) error {
	const op smerrors.Op = "logging.ValidateConfig"
	if cfg == nil {
		return smerrors.New(op).Msg(errMsgNilConfig)
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("reldir", isRelativeDir)
	})

	if err := validate.Struct(cfg); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgConfigInvalid + invalidFields(err))
	}

	return nil
}

// isRelativeDir rejects absolute paths and paths escaping the working dir.
func isRelativeDir(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return false
	}
	clean := filepath.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

func invalidFields(err error) string {
	var verrs validator.ValidationErrors
	if !stderrs.As(err, &verrs) || len(verrs) == 0 {
		return emptyString
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return " (" + strings.Join(fields, ", ") + ")"
}
