package web

import (
	"embed"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"llm-chat/internal/config"

	"github.com/pkg/errors"
)

//go:embed static
var staticFiles embed.FS

// NewAssetHandler returns the handler that serves everything outside /api/.
func NewAssetHandler(cfg config.AssetsConfig) (http.Handler, error) {
	switch {
	case cfg.Origin != "":
		return newOriginProxy(cfg.Origin)
	case cfg.Dir != "":
		info, err := os.Stat(cfg.Dir)
		if err != nil {
			return nil, errors.Wrap(err, "could not open assets dir")
		}
		if !info.IsDir() {
			return nil, errors.Errorf("assets dir %q is not a directory", cfg.Dir)
		}
		return http.FileServer(http.Dir(cfg.Dir)), nil
	default:
		sub, err := fs.Sub(staticFiles, "static")
		if err != nil {
			return nil, errors.Wrap(err, "could not load embedded assets")
		}
		return http.FileServer(http.FS(sub)), nil
	}
}

// newOriginProxy forwards asset requests unchanged to a separate asset host.
func newOriginProxy(origin string) (http.Handler, error) {
	target, err := url.Parse(origin)
	if err != nil {
		return nil, errors.Wrap(err, "invalid assets origin")
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.Errorf("assets origin %q must be an absolute URL", origin)
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
	}, nil
}
