// Пакет содержит валидацию входных данных API редактирования. Использует
// библиотеку go-playground/validator с дополнительными валидаторами для
// видов меток, блоков и идентификаторов документов.
package editor

import (
	"regexp"

	"github.com/go-playground/validator"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("markKind", markKindValidator); err != nil {
		return nil
	}

	if err := v.RegisterValidation("blockKind", blockKindValidator); err != nil {
		return nil
	}

	if err := v.RegisterValidation("documentId", documentIdValidator); err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func markKindValidator(fl validator.FieldLevel) bool {
	switch document.MarkKind(fl.Field().String()) {
	case document.MarkBold, document.MarkItalic, document.MarkUnderline,
		document.MarkStrike, document.MarkCode, document.MarkLink,
		document.MarkFontFamily, document.MarkFontSize, document.MarkColor,
		document.MarkBackground, document.MarkAnchor, document.MarkMention:
		return true
	}
	return false
}

func blockKindValidator(fl validator.FieldLevel) bool {
	switch document.NodeKind(fl.Field().String()) {
	case document.KindParagraph, document.KindHeading, document.KindBlockquote,
		document.KindCodeBlock, document.KindBulletList, document.KindOrderedList:
		return true
	}
	return false
}

var documentIdRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

func documentIdValidator(fl validator.FieldLevel) bool {
	return documentIdRegexp.MatchString(fl.Field().String())
}
