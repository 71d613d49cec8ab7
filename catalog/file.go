package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smallnest/coursectx/course"
)

// File is the on-disk catalog layout.
type File struct {
	Courses []course.CourseDetails `json:"courses" yaml:"courses"`
}

// LoadFile reads a catalog from a .json, .yaml or .yml file.
func LoadFile(path string) ([]course.CourseDetails, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return f.Courses, nil
}

// WriteFile writes courses to path, choosing the format from the extension.
func WriteFile(path string, courses []course.CourseDetails) error {
	f := File{Courses: courses}

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(f, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(f)
	default:
		return fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
