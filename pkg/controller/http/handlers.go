package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"github.com/quillforge/quill/pkg/usecase"
	"github.com/quillforge/quill/pkg/utils/errutil"
	"github.com/quillforge/quill/pkg/utils/safe"
)

type sessionResponse struct {
	ID               string    `json:"id"`
	View             string    `json:"view"`
	GenerationStatus string    `json:"generationStatus"`
	FailureReason    string    `json:"failureReason,omitempty"`
	Editing          bool      `json:"editing"`
	MessageCount     int       `json:"messageCount"`
	HasDocument      bool      `json:"hasDocument"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type attachmentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

type messageResponse struct {
	ID          string               `json:"id"`
	Author      string               `json:"author"`
	Text        string               `json:"text"`
	Attachments []attachmentResponse `json:"attachments,omitempty"`
	Seq         int64                `json:"seq"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type rejectionResponse struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

type documentResponse struct {
	Title                string    `json:"title"`
	Body                 string    `json:"body"`
	Tags                 []string  `json:"tags"`
	EstimatedReadMinutes int       `json:"estimatedReadMinutes"`
	Edited               bool      `json:"edited"`
	CreatedAt            time.Time `json:"createdAt"`
}

func toSessionResponse(state *usecase.SessionState) *sessionResponse {
	s := state.Session
	return &sessionResponse{
		ID:               s.ID.String(),
		View:             s.ActiveView.String(),
		GenerationStatus: s.GenerationStatus.String(),
		FailureReason:    s.FailureReason.String(),
		Editing:          s.Editing,
		MessageCount:     state.MessageCount,
		HasDocument:      state.HasDocument,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toMessageResponse(msg *model.Message) *messageResponse {
	resp := &messageResponse{
		ID:        msg.ID().String(),
		Author:    msg.Author().String(),
		Text:      msg.Text(),
		Seq:       msg.Seq(),
		CreatedAt: msg.CreatedAt(),
	}
	for _, a := range msg.Attachments() {
		resp.Attachments = append(resp.Attachments, attachmentResponse{
			ID:        a.ID().String(),
			Name:      a.Name(),
			MimeType:  a.MimeType(),
			SizeBytes: a.SizeBytes(),
		})
	}
	return resp
}

func toDocumentResponse(doc *model.Document) *documentResponse {
	return &documentResponse{
		Title:                doc.Title,
		Body:                 doc.EffectiveBody(),
		Tags:                 doc.Tags,
		EstimatedReadMinutes: doc.EstimatedReadMinutes,
		Edited:               doc.Edited,
		CreatedAt:            doc.CreatedAt,
	}
}

func sessionID(r *http.Request) types.SessionID {
	return types.SessionID(chi.URLParam(r, "sessionID"))
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body) //nolint:errcheck // header already committed
}

// respondError maps use case sentinels to HTTP status codes
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrEmptyMessage),
		errors.Is(err, usecase.ErrEditNotActive):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrPublisherNotConfigured):
		status = http.StatusServiceUnavailable
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.uc.StartSession(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	state, err := s.uc.GetSession(r.Context(), session.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSessionResponse(state))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.uc.GetSession(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(state))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.DiscardSession(r.Context(), sessionID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) switchView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid view request"), http.StatusBadRequest)
		return
	}

	view, err := types.ParseView(req.View)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid view"), http.StatusBadRequest)
		return
	}

	session, err := s.uc.SwitchView(r.Context(), sessionID(r), view)
	if err != nil {
		respondError(w, r, err)
		return
	}

	state, err := s.uc.GetSession(r.Context(), session.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(state))
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid multipart request"), http.StatusBadRequest)
		return
	}

	text := r.FormValue("text")

	var files []usecase.FileUpload
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to open upload", goerr.V("file", fh.Filename)), http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			safe.Close(r.Context(), f)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read upload", goerr.V("file", fh.Filename)), http.StatusBadRequest)
				return
			}
			files = append(files, usecase.FileUpload{
				Name:     fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Data:     data,
			})
		}
	}

	result, err := s.uc.SubmitMessage(r.Context(), sessionID(r), text, files)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := struct {
		Message    *messageResponse    `json:"message"`
		Rejections []rejectionResponse `json:"rejections"`
	}{
		Message:    toMessageResponse(result.Message),
		Rejections: make([]rejectionResponse, 0, len(result.Rejections)),
	}
	for _, rej := range result.Rejections {
		resp.Rejections = append(resp.Rejections, rejectionResponse{
			File:   rej.FileName,
			Reason: rej.Reason.String(),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.uc.ListMessages(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := struct {
		Messages []*messageResponse `json:"messages"`
	}{
		Messages: make([]*messageResponse, len(messages)),
	}
	for i, msg := range messages {
		resp.Messages[i] = toMessageResponse(msg)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) requestGeneration(w http.ResponseWriter, r *http.Request) {
	reqID, err := s.uc.RequestGeneration(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, struct {
		RequestID string `json:"requestId"`
	}{RequestID: reqID.String()})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.uc.GetDocument(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) beginEdit(w http.ResponseWriter, r *http.Request) {
	text, err := s.uc.BeginEdit(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Text string `json:"text"`
	}{Text: text})
}

func (s *Server) commitEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid edit request"), http.StatusBadRequest)
		return
	}

	doc, err := s.uc.CommitEdit(r.Context(), sessionID(r), req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) cancelEdit(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.CancelEdit(r.Context(), sessionID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportDocument(w http.ResponseWriter, r *http.Request) {
	format := usecase.ExportFormat(r.URL.Query().Get("format"))

	export, err := s.uc.ExportDocument(r.Context(), sessionID(r), format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Write(export.Data) //nolint:errcheck // header already committed
}

func (s *Server) publishDocument(w http.ResponseWriter, r *http.Request) {
	url, err := s.uc.PublishDocument(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		URL string `json:"url"`
	}{URL: url})
}
