package formsetapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// ReplicateRequest is the POST body of the replicate route.
type ReplicateRequest struct {
	HTML       string `json:"html"`
	Container  string `json:"container"`
	Counter    string `json:"counter,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	EntryClass string `json:"entryClass,omitempty"`
	Times      int    `json:"times,omitempty"`
}

// ReplicateResponse reports the updated markup and the last replication.
type ReplicateResponse struct {
	HTML        string `json:"html"`
	Index       int    `json:"index"`
	Count       int    `json:"count"`
	StoredCount int    `json:"storedCount"`
	Drifted     bool   `json:"drifted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ReplicateHandler builds the replicate handler with default options plus
// any overrides.
func ReplicateHandler(fns ...OptionFn) http.Handler {
	return ReplicateHandlerWithOptions(NewOptions(fns...))
}

// ReplicateHandlerWithOptions builds the replicate handler from a
// pre-constructed Options value.
func ReplicateHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, StatusError{Code: http.StatusMethodNotAllowed})
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		var req ReplicateRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, StatusError{Code: http.StatusRequestEntityTooLarge, Err: err})
				return
			}
			writeError(w, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("decode request: %w", err)})
			return
		}

		resp, err := replicate(req, opts)
		if err != nil {
			opts.Logger.Warn("Replication rejected",
				zap.String("container", req.Container),
				zap.Error(err))
			writeError(w, err)
			return
		}
		opts.Logger.Debug("Replicated formset entry",
			zap.String("container", req.Container),
			zap.Int("index", resp.Index),
			zap.Int("count", resp.Count),
			zap.Bool("drifted", resp.Drifted))
		writeJSON(w, http.StatusOK, resp)
	})
}

func replicate(req ReplicateRequest, opts Options) (ReplicateResponse, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return ReplicateResponse{}, StatusError{Code: http.StatusBadRequest, Err: errors.New("html is required")}
	}
	if strings.TrimSpace(req.Container) == "" {
		return ReplicateResponse{}, StatusError{Code: http.StatusBadRequest, Err: errors.New("container is required")}
	}
	times := req.Times
	if times <= 0 {
		times = 1
	}
	if times > opts.MaxTimes {
		return ReplicateResponse{}, StatusError{
			Code: http.StatusBadRequest,
			Err:  fmt.Errorf("times must be at most %d", opts.MaxTimes),
		}
	}

	document := formset.LooksLikeDocument(req.HTML)
	var root *html.Node
	var err error
	if document {
		root, err = formset.ParseDocument(strings.NewReader(req.HTML))
	} else {
		root, err = formset.ParseFragment(strings.NewReader(req.HTML))
	}
	if err != nil {
		return ReplicateResponse{}, StatusError{Code: http.StatusBadRequest, Err: err}
	}

	target := formset.Target{
		Container:  req.Container,
		Counter:    req.Counter,
		Prefix:     req.Prefix,
		EntryClass: req.EntryClass,
	}
	result, err := formset.ReplicateIn(root, target, times)
	if err != nil {
		return ReplicateResponse{}, StatusError{Code: http.StatusUnprocessableEntity, Err: err}
	}

	var buf bytes.Buffer
	if document {
		err = formset.RenderNode(&buf, root)
	} else {
		err = formset.RenderChildren(&buf, root)
	}
	if err != nil {
		return ReplicateResponse{}, StatusError{Code: http.StatusInternalServerError, Err: err}
	}

	return ReplicateResponse{
		HTML:        buf.String(),
		Index:       result.Index,
		Count:       result.Count,
		StoredCount: result.StoredCount,
		Drifted:     result.Drifted,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	message := http.StatusText(code)
	if err != nil && code < http.StatusInternalServerError {
		message = err.Error()
	}
	writeJSON(w, code, errorResponse{Error: message})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
