// Обработчики HTTP API документов: создание и закрытие документов, обмен
// содержимым в JSON и HTML, выделение и команды редактирования.
package editor

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/aisa-it/aiplan-editor/internal/editor/apierrors"
	"github.com/aisa-it/aiplan-editor/internal/editor/docjson"
	"github.com/aisa-it/aiplan-editor/internal/editor/document"
	"github.com/aisa-it/aiplan-editor/internal/editor/htmlconv"
	errStack "github.com/aisa-it/aiplan-editor/internal/editor/stack-error"
)

type CreateDocumentRequest struct {
	ID      string          `json:"id" validate:"omitempty,documentId"`
	Content json.RawMessage `json:"content"`
}

type DocumentResponse struct {
	ID        string    `json:"id"`
	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

type MarkPayload struct {
	Kind  string            `json:"kind" validate:"required,markKind"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// IntentRequest - команда редактирования. Поля text, mark, block и level
// обязательны только для соответствующих видов команд.
type IntentRequest struct {
	Type  string       `json:"type" validate:"required,oneof=insert-text enter backspace delete cut select-all apply-mark remove-mark format-block undo redo"`
	Text  string       `json:"text,omitempty"`
	Mark  *MarkPayload `json:"mark,omitempty"`
	Block string       `json:"block,omitempty" validate:"omitempty,blockKind"`
	Level int          `json:"level,omitempty" validate:"omitempty,min=1,max=6"`
}

type IntentResponse struct {
	Version   uint64             `json:"version"`
	Selection document.Selection `json:"selection"`
	Text      string             `json:"text,omitempty"`
}

type SnapshotResponse struct {
	DocumentID string    `json:"document_id"`
	Version    uint64    `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Services) AddDocumentServices(g *echo.Group) {
	g.POST("/", s.createDocument)
	g.GET("/", s.getDocumentList)

	g.GET("/snapshots/", s.getSnapshotList)
	g.DELETE("/snapshots/:documentId/", s.deleteSnapshot)

	documentGroup := g.Group("/:documentId")
	documentGroup.GET("/", s.getDocument)
	documentGroup.DELETE("/", s.closeDocument)
	documentGroup.PUT("/content/", s.replaceDocumentContent)
	documentGroup.GET("/html/", s.getDocumentHTML)
	documentGroup.PUT("/html/", s.pasteDocumentHTML)
	documentGroup.GET("/selection/", s.getDocumentSelection)
	documentGroup.PUT("/selection/", s.setDocumentSelection)
	documentGroup.POST("/intents/", s.applyDocumentIntent)
	documentGroup.GET("/ws/", s.watchDocumentVersions)
}

func (s *Services) createDocument(c echo.Context) error {
	var req CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(req); err != nil {
		return EErrorDefined(c, apierrors.ErrDocumentIDInvalid)
	}

	var doc *document.Node
	if len(req.Content) > 0 {
		parsed, err := docjson.ParseJSON(bytes.NewReader(req.Content))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrDocumentBadJSON)
		}
		doc = parsed
	}

	md, err := s.documents.Create(req.ID, doc)
	if err != nil {
		if defined, ok := err.(apierrors.DefinedError); ok {
			return EErrorDefined(c, defined)
		}
		errStack.GetError(c, err)
		return EErrorDefined(c, apierrors.ErrGeneric)
	}
	openDocumentsGauge.Inc()
	return c.JSON(http.StatusCreated, toDocumentResponse(md))
}

func (s *Services) getDocumentList(c echo.Context) error {
	list := s.documents.List()
	resp := make([]DocumentResponse, len(list))
	for i, md := range list {
		resp[i] = toDocumentResponse(md)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Services) getDocument(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}
	content, err := docjson.Serialize(md.Session.Doc())
	if err != nil {
		return EError(c, err)
	}
	return c.JSONBlob(http.StatusOK, content)
}

func (s *Services) closeDocument(c echo.Context) error {
	id := c.Param("documentId")
	if err := s.documents.Close(id); err != nil {
		if defined, ok := err.(apierrors.DefinedError); ok {
			return EErrorDefined(c, defined)
		}
		errStack.GetError(c, err)
		return EErrorDefined(c, apierrors.ErrSnapshotSaveFail)
	}
	s.wsVersions.CloseDocumentSessions(id)
	openDocumentsGauge.Dec()
	return c.NoContent(http.StatusNoContent)
}

func (s *Services) replaceDocumentContent(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}
	doc, err := docjson.ParseJSON(c.Request().Body)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrDocumentBadJSON)
	}
	md.Session.LoadContent(doc.Children)
	return c.JSON(http.StatusOK, IntentResponse{
		Version:   md.Session.Version(),
		Selection: md.Session.Selection(),
	})
}

func (s *Services) getDocumentHTML(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}
	return c.HTML(http.StatusOK, htmlconv.SerializeHTML(md.Session.Doc()))
}

func (s *Services) pasteDocumentHTML(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}

	parse := htmlconv.ParseHTML
	if s.cfg.SanitizeDisabled {
		parse = htmlconv.ParseHTMLRaw
	}
	doc, err := parse(c.Request().Body)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrDocumentBadHTML)
	}
	md.Session.LoadContent(doc.Children)
	return c.JSON(http.StatusOK, IntentResponse{
		Version:   md.Session.Version(),
		Selection: md.Session.Selection(),
	})
}

func (s *Services) getDocumentSelection(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}
	return c.JSON(http.StatusOK, md.Session.Selection())
}

func (s *Services) setDocumentSelection(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}
	var sel document.Selection
	if err := c.Bind(&sel); err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidSelection)
	}
	md.Session.SetSelection(sel)
	return c.JSON(http.StatusOK, md.Session.Selection())
}

func (s *Services) getSnapshotList(c echo.Context) error {
	snapshots, err := s.snapshots.List()
	if err != nil {
		return EError(c, err)
	}
	resp := make([]SnapshotResponse, len(snapshots))
	for i, snapshot := range snapshots {
		resp[i] = SnapshotResponse{
			DocumentID: snapshot.DocumentID,
			Version:    snapshot.Version,
			UpdatedAt:  snapshot.UpdatedAt,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Services) deleteSnapshot(c echo.Context) error {
	id := c.Param("documentId")
	snapshot, err := s.snapshots.Load(id)
	if err != nil {
		return EError(c, err)
	}
	if snapshot == nil {
		return EErrorDefined(c, apierrors.ErrSnapshotNotFound)
	}
	if err := s.snapshots.Delete(id); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Services) applyDocumentIntent(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}

	var req IntentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidIntent.FormatF(err.Error()))
	}
	if err := c.Validate(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range errs {
				switch fieldErr.Tag() {
				case "markKind":
					return EErrorDefined(c, apierrors.ErrUnknownMark.FormatF(fieldErr.Value()))
				case "blockKind":
					return EErrorDefined(c, apierrors.ErrUnknownBlockKind.FormatF(fieldErr.Value()))
				}
			}
		}
		return EErrorDefined(c, apierrors.ErrInvalidIntent.FormatF(err.Error()))
	}

	sess := md.Session
	var cutText string
	switch req.Type {
	case "insert-text":
		if req.Text == "" {
			return EErrorDefined(c, apierrors.ErrInvalidIntent.FormatF("empty text"))
		}
		sess.InsertText(req.Text)
	case "enter":
		sess.Enter()
	case "backspace":
		sess.Backspace()
	case "delete":
		sess.Delete()
	case "cut":
		cutText = sess.Cut()
	case "select-all":
		sess.SelectAll()
	case "apply-mark":
		if req.Mark == nil {
			return EErrorDefined(c, apierrors.ErrInvalidIntent.FormatF("missing mark"))
		}
		sess.ApplyMark(document.Mark{Kind: document.MarkKind(req.Mark.Kind), Attrs: req.Mark.Attrs})
	case "remove-mark":
		if req.Mark == nil {
			return EErrorDefined(c, apierrors.ErrInvalidIntent.FormatF("missing mark"))
		}
		sess.RemoveMark(document.MarkKind(req.Mark.Kind))
	case "format-block":
		if req.Block == "" {
			return EErrorDefined(c, apierrors.ErrInvalidIntent.FormatF("missing block kind"))
		}
		var attrs *document.Attrs
		if document.NodeKind(req.Block) == document.KindHeading {
			level := req.Level
			if level == 0 {
				level = 1
			}
			attrs = &document.Attrs{Level: level}
		}
		sess.FormatBlock(document.NodeKind(req.Block), attrs)
	case "undo":
		sess.Undo()
	case "redo":
		sess.Redo()
	}

	intentsCounter.WithLabelValues(req.Type).Inc()
	return c.JSON(http.StatusOK, IntentResponse{
		Version:   sess.Version(),
		Selection: sess.Selection(),
		Text:      cutText,
	})
}

func (s *Services) watchDocumentVersions(c echo.Context) error {
	md := s.documents.Get(c.Param("documentId"))
	if md == nil {
		return EErrorDefined(c, apierrors.ErrDocumentNotFound)
	}
	s.wsVersions.Handle(md.ID, c.Response(), c.Request())
	return nil
}

func toDocumentResponse(md *ManagedDocument) DocumentResponse {
	return DocumentResponse{
		ID:        md.ID,
		Version:   md.Session.Version(),
		CreatedAt: md.CreatedAt,
	}
}
