package echo

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	mediaJSON    = "application/json"
	mediaMsgpack = "application/msgpack"
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

type fieldMessages struct {
	Messages []string `json:"messages" msgpack:"messages"`
}

type failureResponse struct {
	Errors map[string]fieldMessages `json:"errors" msgpack:"errors"`
}

// UploadedFile describes a file received by the post handler.
type UploadedFile struct {
	Name        string `json:"name" msgpack:"name"`
	ContentType string `json:"type" msgpack:"type"`
	Size        int64  `json:"size" msgpack:"size"`
}

// Handler builds a handler serving both echo routes relative to the root.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the combined handler from a pre-constructed
// Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	mux := http.NewServeMux()
	mux.Handle(mountPath("", opts.GetPath), GetHandler(opts))
	mux.Handle(mountPath("", opts.PostPath), PostHandler(opts))
	return mux
}

// GetHandler echoes the query string of GET and HEAD requests.
func GetHandler(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return withCORS(opts, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if !guard(w, r, opts) {
			return
		}

		query := r.URL.Query()
		opts.Logger.Debug("echo query", zap.String("path", r.URL.Path), zap.Int("fields", len(query)))

		if validate(w, r, opts, query) {
			return
		}
		write(w, r, http.StatusOK, flatten(query))
	}))
}

// PostHandler echoes the fields and files of write requests. Multipart and
// urlencoded bodies are accepted.
func PostHandler(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return withCORS(opts, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			w.Header().Set("Allow", "POST, PUT, PATCH, DELETE")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if !guard(w, r, opts) {
			return
		}

		fields, files, err := parseBody(r, opts.MaxMemory)
		if err != nil {
			opts.Logger.Debug("echo body rejected", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		opts.Logger.Debug("echo body",
			zap.String("path", r.URL.Path),
			zap.Int("fields", len(fields)),
			zap.Int("files", len(files)),
		)

		if validate(w, r, opts, fields) {
			return
		}

		out := flatten(fields)
		for name, list := range files {
			if len(list) == 1 {
				out[name] = list[0]
				continue
			}
			out[name] = list
		}
		write(w, r, http.StatusOK, out)
	}))
}

func parseBody(r *http.Request, maxMemory int64) (url.Values, map[string][]UploadedFile, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, nil, err
		}
		return r.PostForm, nil, nil
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, nil, err
	}
	files := make(map[string][]UploadedFile, len(r.MultipartForm.File))
	for name, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			files[name] = append(files[name], UploadedFile{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
		}
	}
	return url.Values(r.MultipartForm.Value), files, nil
}

// flatten keeps single values as strings and repeated ones as lists.
func flatten(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for name, list := range values {
		if len(list) == 1 {
			out[name] = list[0]
			continue
		}
		out[name] = append([]string(nil), list...)
	}
	return out
}

func guard(w http.ResponseWriter, r *http.Request, opts Options) bool {
	if opts.Guard == nil {
		return true
	}
	if err := opts.Guard(r); err != nil {
		writeGuardError(w, err)
		return false
	}
	return true
}

func validate(w http.ResponseWriter, r *http.Request, opts Options, fields url.Values) bool {
	if opts.Validator == nil {
		return false
	}
	reported := opts.Validator(fields)
	if len(reported) == 0 {
		return false
	}

	resp := failureResponse{Errors: make(map[string]fieldMessages, len(reported))}
	names := make([]string, 0, len(reported))
	for name, messages := range reported {
		resp.Errors[name] = fieldMessages{Messages: append([]string{}, messages...)}
		names = append(names, name)
	}
	sort.Strings(names)
	opts.Logger.Debug("echo validation failed", zap.Strings("fields", names))

	write(w, r, http.StatusUnprocessableEntity, resp)
	return true
}

func withCORS(opts Options, next http.Handler) http.Handler {
	if !opts.CORS {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
		h.Set("Access-Control-Allow-Methods", "GET, PUT, PATCH, POST, DELETE, HEAD")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func write(w http.ResponseWriter, r *http.Request, status int, body any) {
	if prefersMsgpack(r.Header.Get("Accept")) {
		raw, err := msgpack.Marshal(body)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", mediaMsgpack)
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = w.Write(raw)
		}
		return
	}

	w.Header().Set("Content-Type", mediaJSON+"; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

// prefersMsgpack reports whether the first listed media type asks for
// MessagePack.
func prefersMsgpack(accept string) bool {
	first, _, _ := strings.Cut(accept, ",")
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(first))
	if err != nil {
		return false
	}
	return mediaType == mediaMsgpack || mediaType == "application/x-msgpack"
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
