package domain

import (
	"errors"
	"fmt"
)

// 预定义的领域错误
var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput 无效的输入
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized 未认证
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTransport 网络/传输层错误
	ErrTransport = errors.New("transport error")
	// ErrCancelled 流式会话被主动取消（不是错误，用于区分）
	ErrCancelled = errors.New("stream cancelled")
	// ErrInternal 内部错误
	ErrInternal = errors.New("internal error")
)

// DomainError 领域错误
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error 实现 error 接口（用于日志和内部传递）
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage 返回用户友好的错误消息（不包含内部错误细节）
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap 返回包装的错误
func (e *DomainError) Unwrap() error {
	return e.Err
}

// APIError 后端返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == 401 || e.Status == 403 {
		return ErrUnauthorized
	}
	return ErrTransport
}

// NewAPIError 创建后端响应错误
func NewAPIError(status int, message string) error {
	if message == "" {
		message = fmt.Sprintf("请求失败: %d", status)
	}
	return &APIError{Status: status, Message: message}
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError 创建无效输入错误
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewTransportError 创建传输层错误
func NewTransportError(err error) error {
	return &DomainError{
		Code:    "TRANSPORT_ERROR",
		Message: "network request failed",
		Err:     fmt.Errorf("%w: %v", ErrTransport, err),
	}
}

// NewInternalError 创建内部错误
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred", // 不暴露内部错误细节
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound 判断是否为资源不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput 判断是否为无效输入错误
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized 判断是否为未认证错误
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsCancelled 判断是否为会话取消（取消不算错误，回调层需要吞掉）
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsTransport 判断是否为传输层错误
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
