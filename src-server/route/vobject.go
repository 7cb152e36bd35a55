package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"vobject/src-server/metric"
	"vobject/src-server/utils"
	"vobject/src-server/vobject"
)

type ParamRespBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type PropertyRespBody struct {
	Name   string          `json:"name"`
	Params []ParamRespBody `json:"params"`
	Value  string          `json:"value"`
}

type ComponentRespBody struct {
	Name       string               `json:"name"`
	Properties []PropertyRespBody   `json:"properties"`
	Components []*ComponentRespBody `json:"components"`
}

type ErrorRespBody struct {
	Error string         `json:"error"`
	Kind  string         `json:"kind"`
	Args  map[string]any `json:"args,omitempty"`
}

// Convert a tree into its JSON shape without recursion
func toComponentRespBody(root *vobject.Component) *ComponentRespBody {
	type frame struct {
		component *vobject.Component
		body      *ComponentRespBody
	}
	newBody := func(c *vobject.Component) *ComponentRespBody {
		properties := c.Properties()
		body := &ComponentRespBody{
			Name:       c.Name,
			Properties: make([]PropertyRespBody, 0, len(properties)),
			Components: make([]*ComponentRespBody, 0),
		}
		for _, property := range properties {
			params := make([]ParamRespBody, 0, len(property.Params))
			for _, param := range property.Params {
				params = append(params, ParamRespBody{Key: param.Key, Value: param.Value})
			}
			body.Properties = append(body.Properties, PropertyRespBody{
				Name:   property.Name,
				Params: params,
				Value:  property.RawValue,
			})
		}
		return body
	}

	rootBody := newBody(root)
	stack := []frame{{component: root, body: rootBody}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range top.component.Components() {
			childBody := newBody(child)
			top.body.Components = append(top.body.Components, childBody)
			stack = append(stack, frame{component: child, body: childBody})
		}
	}
	return rootBody
}

// Parse `text` into root components, recording the outcome in the metrics
func parseRoots(as *utils.AppState, text string) ([]*vobject.Component, error) {
	startTimer := time.Now()
	roots, err := vobject.ParseComponents(text)
	as.MetricChans.Observe(as.MetricChans.Parse, startTimer)
	metric.ParseTotal.WithLabelValues(metric.ParseResult(err)).Inc()
	return roots, err
}

// Write a parse error as JSON, with its diagnostic args when available
func writeParseError(w http.ResponseWriter, err error) {
	respBody := ErrorRespBody{
		Error: err.Error(),
		Kind:  metric.ParseResult(err),
	}
	var customError *vobject.CustomError
	if errors.As(err, &customError) {
		respBody.Args = make(map[string]any)
		for _, key := range []string{"line", "content", "expected", "found", "root"} {
			if value, ok := customError.Arg(key); ok {
				respBody.Args[key] = value
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(respBody); err != nil {
		slog.Warn("can't write to response", "where", "route/vobject.go", "err", err)
	}
}

func Vobject(muxer *http.ServeMux, as *utils.AppState) {
	// parse then serialize again: folded, escaped, CRLF terminated
	muxer.HandleFunc("POST /normalize", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		roots, err := parseRoots(as, body)
		if err != nil {
			writeParseError(w, err)
			return
		}

		startTimer := time.Now()
		var sb strings.Builder
		writer := vobject.NewWriter(&sb, as.Config.GetFoldWidth())
		for _, root := range roots {
			if err := writer.Write(root); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't serialize component"))
				slog.Error("can't serialize component", "error", err)
				return
			}
			metric.SerializeTotal.Inc()
		}
		as.MetricChans.Observe(as.MetricChans.Serialize, startTimer)

		hash, err := utils.GetContentHash(strings.NewReader(sb.String()))
		if err != nil {
			slog.Warn("can't hash normalized content", "error", err)
		} else {
			w.Header().Set("ETag", `"`+hash+`"`)
		}
		w.Header().Set("Content-Type", contentType(roots[0].Name))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(sb.String())); err != nil {
			slog.Warn("can't write to response", "where", "route/vobject.go", "err", err)
		}
	}))

	// the generic tree as JSON: one entry per root component
	muxer.HandleFunc("POST /parse", Middleware(as, func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		roots, err := parseRoots(as, body)
		if err != nil {
			writeParseError(w, err)
			return
		}

		respBody := make([]*ComponentRespBody, 0, len(roots))
		for _, root := range roots {
			respBody = append(respBody, toComponentRespBody(root))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(respBody); err != nil {
			slog.Warn("can't write to response", "where", "route/vobject.go", "err", err)
		}
	}))
}
