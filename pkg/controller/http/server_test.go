package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/quillforge/quill/pkg/controller/http"
	"github.com/quillforge/quill/pkg/repository/memory"
	"github.com/quillforge/quill/pkg/usecase"
)

// syncDispatch runs queued work inline so responses are observable right away
func syncDispatch(ctx context.Context, handler func(ctx context.Context) error) {
	_ = handler(ctx)
}

func setupServer(opts ...usecase.Option) *httpctrl.Server {
	opts = append([]usecase.Option{usecase.WithDispatcher(syncDispatch)}, opts...)
	uc := usecase.New(memory.New(), opts...)
	return httpctrl.New(uc)
}

type sessionJSON struct {
	ID               string `json:"id"`
	View             string `json:"view"`
	GenerationStatus string `json:"generationStatus"`
	FailureReason    string `json:"failureReason"`
	Editing          bool   `json:"editing"`
	MessageCount     int    `json:"messageCount"`
	HasDocument      bool   `json:"hasDocument"`
}

func createSession(t *testing.T, srv *httpctrl.Server) sessionJSON {
	t.Helper()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	gt.Number(t, rec.Code).Equal(http.StatusCreated).Required()

	var session sessionJSON
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session)).Required()
	return session
}

func postText(t *testing.T, srv *httpctrl.Server, sessionID, text string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	gt.NoError(t, mw.WriteField("text", text)).Required()
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID+"/messages", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSessionEndpoints(t *testing.T) {
	t.Run("create returns a fresh session", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		gt.Value(t, session.ID).NotEqual("")
		gt.Value(t, session.View).Equal("CHAT")
		gt.Value(t, session.GenerationStatus).Equal("IDLE")
		gt.Number(t, session.MessageCount).Equal(1)
		gt.Bool(t, session.HasDocument).False()
	})

	t.Run("get unknown session is 404", func(t *testing.T) {
		srv := setupServer()

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("delete removes the session", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+session.ID, nil))
		gt.Number(t, rec.Code).Equal(http.StatusNoContent)

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+session.ID, nil))
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("switch view round trips", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		body := strings.NewReader(`{"view":"DOCUMENT"}`)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+session.ID+"/view", body))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		var updated sessionJSON
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated)).Required()
		gt.Value(t, updated.View).Equal("DOCUMENT")
	})

	t.Run("invalid view is 400", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		body := strings.NewReader(`{"view":"SPLIT"}`)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+session.ID+"/view", body))
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestMessageEndpoints(t *testing.T) {
	t.Run("post message returns the user turn and the reply lands", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		rec := postText(t, srv, session.ID, "an article about fuzzing")
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		var posted struct {
			Message struct {
				Author string `json:"author"`
				Text   string `json:"text"`
				Seq    int64  `json:"seq"`
			} `json:"message"`
			Rejections []json.RawMessage `json:"rejections"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted)).Required()
		gt.Value(t, posted.Message.Author).Equal("USER")
		gt.Value(t, posted.Message.Text).Equal("an article about fuzzing")
		gt.Number(t, posted.Message.Seq).Equal(int64(2))
		gt.Array(t, posted.Rejections).Length(0)

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+session.ID+"/messages", nil))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		var listed struct {
			Messages []struct {
				Author string `json:"author"`
				Seq    int64  `json:"seq"`
			} `json:"messages"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed)).Required()
		gt.Array(t, listed.Messages).Length(3).Required()
		gt.Value(t, listed.Messages[2].Author).Equal("ASSISTANT")
	})

	t.Run("upload with rejection reports it", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		gt.NoError(t, mw.WriteField("text", "with files")).Required()

		// CreateFormFile hardcodes octet-stream, so set the image type by hand
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="files"; filename="a.png"`)
		header.Set("Content-Type", "image/png")
		ok, err := mw.CreatePart(header)
		gt.NoError(t, err).Required()
		_, err = ok.Write([]byte("png-bytes"))
		gt.NoError(t, err).Required()

		bad, err := mw.CreateFormFile("files", "notes.pdf")
		gt.NoError(t, err).Required()
		_, err = bad.Write([]byte("pdf-bytes"))
		gt.NoError(t, err).Required()
		gt.NoError(t, mw.Close()).Required()

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+session.ID+"/messages", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		var posted struct {
			Message struct {
				Attachments []struct {
					Name     string `json:"name"`
					MimeType string `json:"mimeType"`
				} `json:"attachments"`
			} `json:"message"`
			Rejections []struct {
				File   string `json:"file"`
				Reason string `json:"reason"`
			} `json:"rejections"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted)).Required()
		gt.Array(t, posted.Message.Attachments).Length(1).Required()
		gt.Value(t, posted.Message.Attachments[0].Name).Equal("a.png")
		gt.Array(t, posted.Rejections).Length(1).Required()
		gt.Value(t, posted.Rejections[0].File).Equal("notes.pdf")
		gt.Value(t, posted.Rejections[0].Reason).Equal("UNSUPPORTED_TYPE")
	})

	t.Run("empty message is 400", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		rec := postText(t, srv, session.ID, "   ")
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestGenerationEndpoints(t *testing.T) {
	t.Run("generate is accepted and the document appears", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)
		postText(t, srv, session.ID, "Writing table driven tests\nCover subtests too.")

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+session.ID+"/generate", nil))
		gt.Number(t, rec.Code).Equal(http.StatusAccepted).Required()

		var accepted struct {
			RequestID string `json:"requestId"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted)).Required()
		gt.Value(t, accepted.RequestID).NotEqual("")

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+session.ID+"/document", nil))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		var doc struct {
			Title string   `json:"title"`
			Body  string   `json:"body"`
			Tags  []string `json:"tags"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc)).Required()
		gt.Value(t, doc.Title).Equal("Writing table driven tests")
		gt.Bool(t, strings.Contains(doc.Body, "Cover subtests too.")).True()

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+session.ID, nil))
		var state sessionJSON
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state)).Required()
		gt.Value(t, state.GenerationStatus).Equal("SUCCEEDED")
		gt.Bool(t, state.HasDocument).True()
	})

	t.Run("document before generation is 404", func(t *testing.T) {
		srv := setupServer()
		session := createSession(t, srv)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+session.ID+"/document", nil))
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestDocumentEndpoints(t *testing.T) {
	setupWithDocument := func(t *testing.T) (*httpctrl.Server, string) {
		t.Helper()
		srv := setupServer()
		session := createSession(t, srv)
		postText(t, srv, session.ID, "Draft topic")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+session.ID+"/generate", nil))
		gt.Number(t, rec.Code).Equal(http.StatusAccepted).Required()
		return srv, session.ID
	}

	t.Run("edit flow over HTTP", func(t *testing.T) {
		srv, sessionID := setupWithDocument(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID+"/document/edit", nil))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		var begun struct {
			Text string `json:"text"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &begun)).Required()
		gt.Bool(t, strings.Contains(begun.Text, "Draft topic")).True()

		body := strings.NewReader(`{"text":"rewritten body"}`)
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/sessions/"+sessionID+"/document/edit", body))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		var doc struct {
			Body   string `json:"body"`
			Edited bool   `json:"edited"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc)).Required()
		gt.Value(t, doc.Body).Equal("rewritten body")
		gt.Bool(t, doc.Edited).True()
	})

	t.Run("commit without begin is 400", func(t *testing.T) {
		srv, sessionID := setupWithDocument(t)

		body := strings.NewReader(`{"text":"sneaky"}`)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/sessions/"+sessionID+"/document/edit", body))
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("cancel edit is 204", func(t *testing.T) {
		srv, sessionID := setupWithDocument(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID+"/document/edit", nil))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sessionID+"/document/edit", nil))
		gt.Number(t, rec.Code).Equal(http.StatusNoContent)
	})

	t.Run("export sets download headers", func(t *testing.T) {
		srv, sessionID := setupWithDocument(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sessionID+"/document/export", nil))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/markdown; charset=utf-8")
		gt.Value(t, rec.Header().Get("Content-Disposition")).Equal(`attachment; filename="draft_topic.md"`)

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sessionID+"/document/export?format=html", nil))
		gt.Number(t, rec.Code).Equal(http.StatusOK).Required()
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/html; charset=utf-8")
		gt.Bool(t, strings.Contains(rec.Body.String(), "<h1>Draft topic</h1>")).True()
	})

	t.Run("publish without publisher is 503", func(t *testing.T) {
		srv, sessionID := setupWithDocument(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+sessionID+"/document/publish", nil))
		gt.Number(t, rec.Code).Equal(http.StatusServiceUnavailable)
	})
}

func TestHealth(t *testing.T) {
	srv := setupServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal("OK")
}
