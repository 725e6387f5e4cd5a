package compilecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-coursepack/content"
)

const (
	flattenModuleMessageType = "coursepack.compile.flatten_module"
	validateVaultMessageType = "coursepack.compile.validate_vault"
	parseCourseMessageType   = "coursepack.compile.parse_course"
)

var errFilesRequired = validation.NewError("coursepack.compile.files_required", "file map is required")

// FlattenModuleCommand flattens a single Module of the supplied vault.
type FlattenModuleCommand struct {
	// Path is the vault-relative path of the Module file.
	Path string `json:"path"`
	// Files holds every file of the vault keyed by path.
	Files content.FileMap `json:"-"`
	// Tiers optionally assigns a maturity tier per path.
	Tiers content.TierMap `json:"tiers,omitempty"`
}

// Type implements command.Message.
func (FlattenModuleCommand) Type() string { return flattenModuleMessageType }

// Validate ensures the module path and file map are present before handlers execute.
func (cmd FlattenModuleCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(requireText("coursepack.compile.flatten_module.path_required", "module path is required"))),
		validation.Field(&cmd.Files, validation.By(requireFiles)),
	)
}

// ValidateVaultCommand runs the vault-wide validation pass.
type ValidateVaultCommand struct {
	Files content.FileMap `json:"-"`
	Tiers content.TierMap `json:"tiers,omitempty"`
}

// Type implements command.Message.
func (ValidateVaultCommand) Type() string { return validateVaultMessageType }

// Validate ensures a file map is supplied.
func (cmd ValidateVaultCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Files, validation.By(requireFiles)),
	)
}

// ParseCourseCommand parses a course file and resolves its module links.
type ParseCourseCommand struct {
	Path  string          `json:"path"`
	Files content.FileMap `json:"-"`
}

// Type implements command.Message.
func (ParseCourseCommand) Type() string { return parseCourseMessageType }

// Validate ensures the course path and file map are present.
func (cmd ParseCourseCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(requireText("coursepack.compile.parse_course.path_required", "course path is required"))),
		validation.Field(&cmd.Files, validation.By(requireFiles)),
	)
}

func requireText(code, message string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}

func requireFiles(value any) error {
	files, ok := value.(content.FileMap)
	if !ok || files == nil {
		return errFilesRequired
	}
	return nil
}
