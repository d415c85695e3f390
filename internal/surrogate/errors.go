package surrogate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDatasetTooSmall is returned by Train when the dataset is below MinTrainingSamples.
	ErrDatasetTooSmall = errors.New("dataset too small")

	// ErrModelUnavailable is returned when a domain's model cannot be loaded.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrFeatureMismatch is matched by FeatureMismatchError.
	ErrFeatureMismatch = errors.New("feature mismatch")

	// ErrIncompatibleArtifact is returned for unknown magic bytes or format versions.
	ErrIncompatibleArtifact = errors.New("incompatible artifact")

	// ErrCorruptArtifact is returned when an artifact decodes but fails integrity checks.
	ErrCorruptArtifact = errors.New("corrupt artifact")

	// ErrInvalidEvaluationSet is returned by Evaluate for empty or ragged input.
	ErrInvalidEvaluationSet = errors.New("invalid evaluation set")
)

// FeatureMismatchError lists how a prediction request's keys differ from the
// model's recorded feature names.
type FeatureMismatchError struct {
	Missing    []string
	Unexpected []string
}

func (e *FeatureMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ","))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ","))
	}
	return fmt.Sprintf("feature mismatch: %s", strings.Join(parts, "; "))
}

func (e *FeatureMismatchError) Is(target error) bool {
	return target == ErrFeatureMismatch
}
