package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind: hatanın sınıfı. Terminal buna göre davranır (tekrar dene / alternatif öner / göster).
type Kind string

const (
	// KindValidation: mutasyondan önce reddedilen istek; kullanıcıya aynen gösterilir, otomatik tekrar denenmez.
	KindValidation Kind = "validation"
	// KindConflict: güncel durumla çelişen istek (ör. kapanmış oturumdaki satışı iptal). Alternative doluysa önerilir.
	KindConflict Kind = "conflict"
	KindNotFound Kind = "not_found"
	// KindBackend: beklenmeyen hata, ham mesaj ile yüzeye çıkar.
	KindBackend Kind = "backend"
)

type Error struct {
	Kind    Kind
	Message string
	// Alternative: çakışma durumunda geçerli olan eylem (ör. "refund")
	Alternative string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(alternative, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Alternative: alternative}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Backend(err error, format string, args ...any) *Error {
	return &Error{Kind: KindBackend, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf: zincirdeki ilk *Error'un sınıfı; bilinmeyen hatalar backend sayılır
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}

func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Status: HTTP durum kodu
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	case KindConflict:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
