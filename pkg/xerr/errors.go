package xerr

import "fmt"

// Business codes returned in the HTTP envelope.
const (
	OK                  = 200
	ServerCommonError   = 500
	RequestParamsError  = 400
	DbError             = 501
	RecordNotFound      = 404
	UnsupportedCurrency = 422
	TooManyRequests     = 429
)

type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

func NewErrCode(code int) error {
	return &CodeError{Code: code, Msg: MapErrMsg(code)}
}

func MapErrMsg(code int) string {
	switch code {
	case ServerCommonError:
		return "internal server error"
	case RequestParamsError:
		return "invalid request parameters"
	case DbError:
		return "database unavailable"
	case RecordNotFound:
		return "record not found"
	case UnsupportedCurrency:
		return "unsupported currency"
	case TooManyRequests:
		return "too many requests"
	default:
		return "unknown error"
	}
}
