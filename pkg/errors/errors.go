package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Таксономия ошибок ядра маршрутизации заявок.
// Репозитории и сервисы возвращают эти sentinel-ошибки (обёрнутые через %w),
// контроллеры переводят их в HTTP-коды через CodeFor.
var (
	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")

	// Ядро переходов
	ErrOrderClosed            = fmt.Errorf("заявка закрыта")
	ErrIllegalTransition      = fmt.Errorf("недопустимый переход статуса")
	ErrForbidden              = fmt.Errorf("роль не даёт права на это действие")
	ErrConcurrentModification = fmt.Errorf("заявку уже перевёл другой пользователь")
	ErrInvalidStatus          = fmt.Errorf("статус не входит в словарь данного типа заявки")
	ErrInsufficientMaterials  = fmt.Errorf("недостаточно материалов на складе")

	// Авторизация
	ErrUnauthorized         = fmt.Errorf("неавторизован")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrEmptyAuthHeader      = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader    = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
)

var httpCodes = map[error]int{
	ErrNotFound:                http.StatusNotFound,
	ErrBadRequest:              http.StatusBadRequest,
	ErrOrderClosed:             http.StatusConflict,
	ErrIllegalTransition:       http.StatusUnprocessableEntity,
	ErrForbidden:               http.StatusForbidden,
	ErrConcurrentModification:  http.StatusConflict,
	ErrInvalidStatus:           http.StatusBadRequest,
	ErrInsufficientMaterials:   http.StatusConflict,
	ErrUnauthorized:            http.StatusUnauthorized,
	ErrInvalidToken:            http.StatusUnauthorized,
	ErrTokenExpired:            http.StatusUnauthorized,
	ErrEmptyAuthHeader:         http.StatusUnauthorized,
	ErrInvalidAuthHeader:       http.StatusUnauthorized,
	ErrInvalidSigningMethod:    http.StatusUnauthorized,
	ErrUserIDNotFoundInContext: http.StatusUnauthorized,
}

// CodeFor возвращает HTTP-код для sentinel-ошибки (через errors.Is,
// чтобы обёртки %w тоже распознавались). Неизвестные ошибки — 500.
func CodeFor(err error) int {
	for sentinel, code := range httpCodes {
		if stderrors.Is(err, sentinel) {
			return code
		}
	}
	return http.StatusInternalServerError
}

// HttpError несёт код и сообщение для ответа пользователю,
// сохраняя исходную ошибку для логов.
type HttpError struct {
	Code    int
	Message string
	Err     error
}

func (e *HttpError) Error() string { return e.Message }
func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}

// Кастомный тип для ошибок валидации входных данных.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
