package echo

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPaths returns the get and post mount paths under basePath.
func MountPaths(basePath string, fns ...OptionFn) (string, string) {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.GetPath), mountPath(basePath, opts.PostPath)
}

// RegisterRoutes registers both echo handlers under basePath on mux and
// returns the registered patterns.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) ([]string, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) ([]string, error) {
	if mux == nil {
		return nil, fmt.Errorf("echo: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })

	getPattern := mountPath(basePath, opts.GetPath)
	postPattern := mountPath(basePath, opts.PostPath)
	if getPattern == postPattern {
		return nil, fmt.Errorf("echo: get and post routes share pattern %q", getPattern)
	}
	mux.Handle(getPattern, GetHandler(opts))
	mux.Handle(postPattern, PostHandler(opts))
	return []string{getPattern, postPattern}, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
