package config

import (
	"gopkg.in/yaml.v3"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
	"github.com/amanverma-wsu/cicd-tool/internal/fsys"
)

// Load reads and validates a project configuration from the given path.
//
// The function performs the following steps:
//  1. Reads the YAML file through the filesystem abstraction
//  2. Decodes it into the Project struct (unknown top-level keys are ignored)
//  3. Validates required fields and field shapes
//
// All failures are reported with CodeInvalidConfig before any network or
// file activity happens elsewhere in the engine.
func Load(fs *fsys.FS, path string) (*Project, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to read project configuration",
			map[string]interface{}{"path": path},
		)
	}

	var project Project
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to parse project configuration",
			map[string]interface{}{"path": path},
		)
	}

	if err := validate(&project); err != nil {
		return nil, err
	}

	return &project, nil
}
