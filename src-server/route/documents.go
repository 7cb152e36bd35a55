package route

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"vobject/src-server/metric"
	"vobject/src-server/model"
	"vobject/src-server/scheduler"
	"vobject/src-server/utils"
	"vobject/src-server/vobject"

	"github.com/uptrace/bun"
)

type OneDocumentRespBody struct {
	ID               string `json:"id"`
	RootTag          string `json:"rootTag"`
	Hash             string `json:"hash"`
	CreatedAtUnixUTC int64  `json:"createdAtUnixUTC"`
	UpdatedAtUnixUTC int64  `json:"updatedAtUnixUTC,omitempty"`
	SourceURL        string `json:"sourceURL,omitempty"`
}

type ImportReqBody struct {
	URL string `json:"url"`
}

func toOneDocumentRespBody(document *model.Document) OneDocumentRespBody {
	return OneDocumentRespBody{
		ID:               document.ID,
		RootTag:          document.RootTag,
		Hash:             document.Hash,
		CreatedAtUnixUTC: document.CreatedAt,
		UpdatedAtUnixUTC: document.UpdatedAt,
		SourceURL:        document.SourceURL,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("can't write to response", "where", "route/documents.go", "err", err)
	}
}

func Documents(muxer *http.ServeMux, as *utils.AppState) {
	// store a document; its content must hold exactly one root component
	store := func(w http.ResponseWriter, r *http.Request, document *model.Document) {
		startTimer := time.Now()
		err := as.BunDB.RunInTx(r.Context(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			return document.Upsert(ctx, tx)
		})
		if errors.Is(err, vobject.ErrParser) {
			metric.ParseTotal.WithLabelValues(metric.ParseResult(err)).Inc()
			writeParseError(w, err)
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't store document"))
			slog.Error("can't store document", "error", err)
			return
		}
		metric.ParseTotal.WithLabelValues(metric.ParseResult(nil)).Inc()
		as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)

		w.Header().Set("Location", "/documents/"+document.ID)
		status := http.StatusCreated
		if document.UpdatedAt != 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, toOneDocumentRespBody(document))
	}

	muxer.HandleFunc("POST /documents", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		store(w, r, &model.Document{Content: body})
	}))

	// fetch a document from a URL; it is refreshed every SOURCE_REFRESH_INTERVAL
	muxer.HandleFunc("POST /documents/import", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		var reqBody ImportReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		sourceURL, err := url.ParseRequestURI(strings.TrimSpace(reqBody.URL))
		if err != nil || (sourceURL.Scheme != "http" && sourceURL.Scheme != "https") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide an http(s) URL"))
			return
		}

		content, err := scheduler.FetchDocument(r.Context(), sourceURL.String(), as.Config.GetMaxBodyBytes())
		if err != nil {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("Can't fetch document"))
			slog.Warn("can't fetch document", "url", sourceURL.String(), "error", err)
			return
		}
		store(w, r, &model.Document{Content: content, SourceURL: sourceURL.String()})
	}))

	muxer.HandleFunc("PUT /documents/{id}", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.PathValue("id"))
		if id == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Document ID is blank"))
			return
		}
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		store(w, r, &model.Document{ID: id, Content: body})
	}))

	// serve the stored text with the media type of its root tag
	muxer.HandleFunc("GET /documents/{id}", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		document, err := model.GetDocument(r.Context(), as.BunDB, r.PathValue("id"))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Document not found"))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get document"))
			slog.Error("can't get document", "error", err)
			return
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)

		etag := `"` + document.Hash + `"`
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Type", contentType(document.RootTag))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(document.Content)); err != nil {
			slog.Warn("can't write to response", "where", "route/documents.go", "err", err)
		}
	}))

	// list every document, or only those with a matching property when
	// `name` is given, e.g. /documents?name=EMAIL&value=jane@example.com
	muxer.HandleFunc("GET /documents", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		value := r.URL.Query().Get("value")

		startTimer := time.Now()
		var documents []*model.Document
		var err error
		switch name {
		case "":
			if value != "" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Please provide a property name along with the value"))
				return
			}
			documents, err = model.ListDocuments(r.Context(), as.BunDB)
		default:
			documents, err = model.FindByProperty(r.Context(), as.BunDB, name, value)
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get documents"))
			slog.Error("can't get documents", "error", err)
			return
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)

		respBody := make([]OneDocumentRespBody, 0, len(documents))
		for _, document := range documents {
			respBody = append(respBody, toOneDocumentRespBody(document))
		}
		writeJSON(w, http.StatusOK, respBody)
	}))

	muxer.HandleFunc("DELETE /documents/{id}", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		deleted, err := model.DeleteDocuments(r.Context(), as.BunDB, r.PathValue("id"))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete document"))
			slog.Error("can't delete document", "error", err)
			return
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
		if deleted == 0 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Document not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}
