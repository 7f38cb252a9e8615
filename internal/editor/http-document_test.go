package editor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) (*Services, *echo.Echo) {
	t.Helper()
	dm, store := newTestManager(t)
	e := echo.New()
	e.Validator = NewRequestValidator()
	return &Services{
		cfg:        dm.cfg,
		documents:  dm,
		wsVersions: NewWebsocketVersionService(),
		snapshots:  store,
	}, e
}

func intentContext(t *testing.T, e *echo.Echo, documentID, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("documentId")
	c.SetParamValues(documentID)
	return c, rec
}

func TestApplyIntentRejectsUnknownKinds(t *testing.T) {
	s, e := newTestServices(t)
	_, err := s.documents.Create("notes", nil)
	require.NoError(t, err)

	t.Run("unknown mark kind", func(t *testing.T) {
		c, rec := intentContext(t, e, "notes", `{"type":"apply-mark","mark":{"kind":"blink"}}`)
		require.NoError(t, s.applyDocumentIntent(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":2003`)
	})

	t.Run("unknown block kind", func(t *testing.T) {
		c, rec := intentContext(t, e, "notes", `{"type":"format-block","block":"marquee"}`)
		require.NoError(t, s.applyDocumentIntent(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":2004`)
	})

	t.Run("unknown intent type", func(t *testing.T) {
		c, rec := intentContext(t, e, "notes", `{"type":"teleport"}`)
		require.NoError(t, s.applyDocumentIntent(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":2001`)
	})

	t.Run("valid intent still passes", func(t *testing.T) {
		c, rec := intentContext(t, e, "notes", `{"type":"insert-text","text":"hi"}`)
		s.documents.Get("notes").Session.SelectAll()
		require.NoError(t, s.applyDocumentIntent(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"version"`)
	})
}

func TestSnapshotRoutes(t *testing.T) {
	s, e := newTestServices(t)

	md, err := s.documents.Create("notes", nil)
	require.NoError(t, err)
	md.Session.SelectAll()
	md.Session.InsertText("persisted")
	require.NoError(t, s.documents.Close("notes"))

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, s.getSnapshotList(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"document_id":"notes"`)
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("documentId")
		c.SetParamValues("notes")
		require.NoError(t, s.deleteSnapshot(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		snapshot, err := s.snapshots.Load("notes")
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("delete missing snapshot", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("documentId")
		c.SetParamValues("missing")
		require.NoError(t, s.deleteSnapshot(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":1005`)
	})
}
