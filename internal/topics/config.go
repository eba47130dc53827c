// Package topics provisions Kafka topics from a YAML definition file.
package topics

import (
	validation "github.com/jellydator/validation"
	"gopkg.in/yaml.v3"

	apperrors "github.com/allisson/orderflow/internal/errors"
)

// Cleanup policies accepted in topic definitions.
const (
	CleanupPolicyDelete  = "delete"
	CleanupPolicyCompact = "compact"
)

// File is the root of a topic definition file.
type File struct {
	Topics []Definition `yaml:"topics"`
}

// Definition describes a topic to create.
type Definition struct {
	Name              string  `yaml:"name"`
	Partitions        int     `yaml:"partitions"`
	ReplicationFactor int     `yaml:"replication_factor"`
	RetentionMs       *int64  `yaml:"retention_ms"`
	CleanupPolicy     *string `yaml:"cleanup_policy"`
}

// Validate checks a single topic definition.
func (d Definition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Partitions, validation.Required, validation.Min(1)),
		validation.Field(&d.ReplicationFactor, validation.Required, validation.Min(1)),
		validation.Field(&d.RetentionMs, validation.Min(int64(-1))),
		validation.Field(&d.CleanupPolicy, validation.In(CleanupPolicyDelete, CleanupPolicyCompact)),
	)
}

// Validate checks every definition in the file.
func (f File) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Topics),
	)
}

// ParseFile decodes and validates a topic definition file. A replication factor left
// out of an entry defaults to 1.
func ParseFile(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid topics file: %v", err)
	}

	for i := range file.Topics {
		if file.Topics[i].ReplicationFactor == 0 {
			file.Topics[i].ReplicationFactor = 1
		}
	}

	if err := file.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid topics file: %v", err)
	}
	return &file, nil
}
