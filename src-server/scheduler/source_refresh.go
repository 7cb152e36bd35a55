package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"vobject/src-server/model"
	"vobject/src-server/utils"
	"vobject/src-server/vobject"

	"github.com/uptrace/bun"
)

const (
	WORKER_COUNT  = 4
	FETCH_TIMEOUT = time.Minute
)

// Download a vCard or iCalendar object, at most `maxBytes` long
func FetchDocument(ctx context.Context, url string, maxBytes int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, FETCH_TIMEOUT)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("FetchDocument: %w", err)
	}
	req.Header.Set("Accept", "text/calendar, text/vcard, text/plain")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("FetchDocument: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("FetchDocument: bad status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("FetchDocument: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return "", fmt.Errorf("FetchDocument: document is larger than %d bytes", maxBytes)
	}
	return string(body), nil
}

// Fetch one sourced document and store it when its normalized content
// changed. Returns whether it was updated.
func refreshDocument(ctx context.Context, as *utils.AppState, document *model.Document) (bool, error) {
	content, err := FetchDocument(ctx, document.SourceURL, as.Config.GetMaxBodyBytes())
	if err != nil {
		return false, err
	}
	component, err := vobject.ParseComponent(content)
	if err != nil {
		return false, err
	}
	hash, err := utils.GetContentHash(strings.NewReader(vobject.WriteComponent(component)))
	if err != nil {
		return false, err
	}
	if hash == document.Hash {
		return false, nil
	}

	document.Content = content
	startTimer := time.Now()
	if err := as.BunDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return document.Upsert(ctx, tx)
	}); err != nil {
		return false, err
	}
	as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
	return true, nil
}

// Refresh every sourced document once, fetching with a pool of workers.
// Returns the number of updated documents.
func RefreshSources(ctx context.Context, as *utils.AppState) (int, error) {
	documents, err := model.ListSourcedDocuments(ctx, as.BunDB)
	if err != nil {
		return 0, fmt.Errorf("RefreshSources: %w", err)
	}
	if len(documents) == 0 {
		return 0, nil
	}

	jobs := make(chan *model.Document, len(documents))
	for _, document := range documents {
		jobs <- document
	}
	close(jobs)

	var wg sync.WaitGroup
	var mu sync.Mutex
	updated := 0
	for range min(WORKER_COUNT, len(documents)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for document := range jobs {
				changed, err := refreshDocument(ctx, as, document)
				if err != nil {
					slog.Warn("RefreshSources: can't refresh document", "id", document.ID, "url", document.SourceURL, "error", err)
					continue
				}
				if changed {
					slog.Info("document refreshed", "id", document.ID, "url", document.SourceURL)
					mu.Lock()
					updated++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	return updated, nil
}

// Refresh sourced documents every SOURCE_REFRESH_INTERVAL until shutdown
func SourceRefresh(as *utils.AppState) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// also aborts an in-flight refresh
		<-*gracefulShutdownCh
		cancel()
	}()
	go func() {
		ticker := time.NewTicker(as.Config.GetSourceRefreshInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := RefreshSources(ctx, as); err != nil {
					slog.Error("can't refresh sourced documents", "error", err)
				}
			}
		}
	}()
}
