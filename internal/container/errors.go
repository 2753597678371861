package container

import (
	"errors"
	"fmt"
)

// ValidationError 领域校验失败（拒绝本次变更，不落库）。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// IsValidation 判断错误是否为领域校验失败。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
