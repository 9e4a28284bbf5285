package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter renders reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes any report as YAML.
func (f *YAMLFormatter) Format(report any) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}
