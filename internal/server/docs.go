package server

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/rahadian/sift/docs"
)

var (
	docsOnce sync.Once
	docsHTML []byte
	docsErr  error
)

// renderDocs converts the embedded API documentation to HTML once per
// process.
func renderDocs() ([]byte, error) {
	docsOnce.Do(func() {
		src, err := docs.FS.ReadFile("api.md")
		if err != nil {
			docsErr = err
			return
		}

		md := goldmark.New(goldmark.WithExtensions(extension.GFM))
		var body bytes.Buffer
		if err := md.Convert(src, &body); err != nil {
			docsErr = err
			return
		}

		var page bytes.Buffer
		page.WriteString(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>sift API</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.5; }
code, pre { background: #f4f4f4; }
pre { padding: 0.75rem; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
</style>
</head>
<body>
`)
		page.Write(body.Bytes())
		page.WriteString("</body>\n</html>\n")
		docsHTML = page.Bytes()
	})
	return docsHTML, docsErr
}

func (s *Server) handleDocs(c *gin.Context) {
	html, err := renderDocs()
	if err != nil {
		s.logger.Error("render docs failed", "error", err)
		errDetail(c, http.StatusInternalServerError, "Internal Server Error: documentation unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
