// Package errs 定义托管引擎的结构化错误：每个错误携带唯一的 Code，
// 每个 Code 归属唯一的 Kind。
package errs

import (
	"errors"
	"net/http"
)

// Kind 错误类别
type Kind string

const (
	KindValidation Kind = "validation" // 输入校验失败
	KindState      Kind = "state"      // 状态前置条件不满足
	KindArithmetic Kind = "arithmetic" // 算术溢出
	KindExternal   Kind = "external"   // 外部依赖（账本、存储、锁）失败
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
)

// Code 机器可读的错误码
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// 校验错误
	CodeInvalidGoalAmount         Code = "INVALID_GOAL_AMOUNT"
	CodeInvalidDuration           Code = "INVALID_DURATION"
	CodeNameTooLong               Code = "NAME_TOO_LONG"
	CodeDescriptionTooLong        Code = "DESCRIPTION_TOO_LONG"
	CodeInvalidContributionAmount Code = "INVALID_CONTRIBUTION_AMOUNT"
	CodeInvalidPrincipal          Code = "INVALID_PRINCIPAL"
	CodeInvalidArgument           Code = "INVALID_ARGUMENT"

	// 状态错误
	CodeProjectNotActive Code = "PROJECT_NOT_ACTIVE"
	CodeProjectEnded     Code = "PROJECT_ENDED"
	CodeProjectNotEnded  Code = "PROJECT_NOT_ENDED"
	CodeGoalReached      Code = "GOAL_REACHED"
	CodeGoalNotReached   Code = "GOAL_NOT_REACHED"
	CodeAlreadyWithdrawn Code = "ALREADY_WITHDRAWN"
	CodeUnauthorized     Code = "UNAUTHORIZED"

	// 算术错误
	CodeOverflow Code = "OVERFLOW"

	// 外部依赖错误
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeLockUnavailable    Code = "LOCK_UNAVAILABLE"

	CodeProjectNotFound      Code = "PROJECT_NOT_FOUND"
	CodeContributionNotFound Code = "CONTRIBUTION_NOT_FOUND"
	CodeDuplicateRecord      Code = "DUPLICATE_RECORD"
)

// Kind 返回错误码所属类别
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidGoalAmount, CodeInvalidDuration, CodeNameTooLong, CodeDescriptionTooLong,
		CodeInvalidContributionAmount, CodeInvalidPrincipal, CodeInvalidArgument:
		return KindValidation
	case CodeProjectNotActive, CodeProjectEnded, CodeProjectNotEnded, CodeGoalReached,
		CodeGoalNotReached, CodeAlreadyWithdrawn, CodeUnauthorized:
		return KindState
	case CodeOverflow:
		return KindArithmetic
	case CodeProjectNotFound, CodeContributionNotFound:
		return KindNotFound
	case CodeDuplicateRecord:
		return KindConflict
	default:
		return KindExternal
	}
}

// Retryable 只有外部依赖错误在条件恢复后可以重试
func (c Code) Retryable() bool {
	return c.Kind() == KindExternal
}

// HTTPStatus 将错误码映射为 HTTP 状态码
func (c Code) HTTPStatus() int {
	if c == CodeUnauthorized {
		return http.StatusForbidden
	}
	switch c.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindState, KindArithmetic:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		if c == CodeInsufficientFunds {
			return http.StatusPaymentRequired
		}
		return http.StatusServiceUnavailable
	}
}

// Error 领域错误
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 按错误码比较，使 errors.Is(err, ErrGoalReached) 可用
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New 创建领域错误
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithField 创建带字段名的校验错误
func WithField(code Code, message, field string) *Error {
	return &Error{Code: code, Message: message, Metadata: map[string]string{"field": field}}
}

// Wrap 包装底层错误
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf 提取错误链中的错误码
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Field 返回校验错误涉及的字段名
func Field(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Metadata != nil {
		return e.Metadata["field"]
	}
	return ""
}

var (
	ErrInvalidGoalAmount         = WithField(CodeInvalidGoalAmount, "invalid goal amount", "goal_amount")
	ErrInvalidDuration           = WithField(CodeInvalidDuration, "invalid duration", "duration")
	ErrNameTooLong               = WithField(CodeNameTooLong, "name too long", "name")
	ErrDescriptionTooLong        = WithField(CodeDescriptionTooLong, "description too long", "description")
	ErrInvalidContributionAmount = WithField(CodeInvalidContributionAmount, "invalid contribution amount", "amount")

	ErrProjectNotActive = New(CodeProjectNotActive, "project is not active")
	ErrProjectEnded     = New(CodeProjectEnded, "project has ended")
	ErrProjectNotEnded  = New(CodeProjectNotEnded, "project not ended")
	ErrGoalReached      = New(CodeGoalReached, "goal already reached")
	ErrGoalNotReached   = New(CodeGoalNotReached, "goal not reached")
	ErrAlreadyWithdrawn = New(CodeAlreadyWithdrawn, "already withdrawn")
	ErrUnauthorized     = New(CodeUnauthorized, "unauthorized")

	ErrOverflow = New(CodeOverflow, "arithmetic overflow")

	ErrInsufficientFunds = New(CodeInsufficientFunds, "insufficient funds")
	ErrLockUnavailable   = New(CodeLockUnavailable, "lock unavailable")

	ErrProjectNotFound      = New(CodeProjectNotFound, "project not found")
	ErrContributionNotFound = New(CodeContributionNotFound, "contribution not found")
	ErrDuplicateRecord      = New(CodeDuplicateRecord, "record already exists")
)
