package service

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry MySQL 唯一索引冲突错误码
const mysqlDuplicateEntry = 1062

// ErrorKind 业务错误类别，由 api 层映射为 HTTP 状态码
type ErrorKind int

const (
	// KindInvalidInput 缺少必填字段、金额非正、预算为负、名称/描述为空
	KindInvalidInput ErrorKind = iota + 1
	// KindNotFound 记录不存在或不属于当前用户，两者刻意不做区分
	KindNotFound
	// KindUnauthorized 凭证错误
	KindUnauthorized
	// KindConflict 唯一约束冲突（如邮箱已注册）
	KindConflict
	// KindStorage 数据库读写失败
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage_fault"
	default:
		return "unknown"
	}
}

// Error 业务错误
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrMissingUser        = &Error{Kind: KindInvalidInput, Message: "user_id is required"}
	ErrExpenseNotFound    = &Error{Kind: KindNotFound, Message: "expense not found or unauthorized"}
	ErrGoalNotFound       = &Error{Kind: KindNotFound, Message: "goal not found or unauthorized"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid email or password"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "email already registered"}
)

func invalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func storageFault(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf 返回错误类别，非业务错误一律视为存储故障
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// PublicMessage 可直接展示给用户的错误信息（不含底层错误详情）
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// isDuplicateKey 唯一索引冲突
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
