// Пакет содержит определения ошибок API сервиса редактирования. Каждая ошибка
// имеет код, HTTP статус и описание, что позволяет удобно обрабатывать
// исключения и предоставлять информативные сообщения пользователю.
//
// Основные возможности:
//   - Определение типов ошибок, связанных с документами, сессиями и выделением.
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Сообщения об ошибках на двух языках.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// FormatF форматирует сообщение ошибки аргументами, если шаблон их ожидает.
func (e DefinedError) FormatF(args ...any) DefinedError {
	if strings.Contains(e.Err, "%") {
		e.Err = fmt.Sprintf(e.Err, args...)
	}
	if strings.Contains(e.RuErr, "%") {
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	}
	return e
}

var (
	// 1*** - document errors
	ErrDocumentNotFound  = DefinedError{Code: 1001, StatusCode: 404, Err: "document not found", RuErr: "Документ не найден"}
	ErrDocumentBadJSON   = DefinedError{Code: 1002, StatusCode: 400, Err: "malformed document json", RuErr: "Некорректный JSON документа"}
	ErrDocumentBadHTML   = DefinedError{Code: 1003, StatusCode: 400, Err: "malformed document html", RuErr: "Некорректный HTML документа"}
	ErrDocumentTooLarge  = DefinedError{Code: 1004, StatusCode: 413, Err: "document too large", RuErr: "Документ слишком большой"}
	ErrSnapshotNotFound  = DefinedError{Code: 1005, StatusCode: 404, Err: "snapshot not found", RuErr: "Снимок документа не найден"}
	ErrSnapshotSaveFail  = DefinedError{Code: 1006, StatusCode: 500, Err: "failed to save snapshot", RuErr: "Не удалось сохранить снимок документа"}
	ErrDocumentExists    = DefinedError{Code: 1007, StatusCode: 409, Err: "document already exists", RuErr: "Документ уже существует"}
	ErrDocumentIDInvalid = DefinedError{Code: 1008, StatusCode: 400, Err: "invalid document id", RuErr: "Некорректный идентификатор документа"}

	// 2*** - edit intent errors
	ErrInvalidIntent    = DefinedError{Code: 2001, StatusCode: 400, Err: "invalid edit intent: %s", RuErr: "Некорректная команда редактирования: %s"}
	ErrInvalidSelection = DefinedError{Code: 2002, StatusCode: 400, Err: "invalid selection", RuErr: "Некорректное выделение"}
	ErrUnknownMark      = DefinedError{Code: 2003, StatusCode: 400, Err: "unknown mark kind: %s", RuErr: "Неизвестный вид форматирования: %s"}
	ErrUnknownBlockKind = DefinedError{Code: 2004, StatusCode: 400, Err: "unknown block kind: %s", RuErr: "Неизвестный вид блока: %s"}

	// 9*** - generic errors
	ErrGeneric = DefinedError{Code: 9001, StatusCode: 500, Err: "internal server error", RuErr: "Внутренняя ошибка сервера. Попробуйте позже"}
)
