package webview

import (
	"io/fs"
	"mime"
	"path"
	"strings"
)

// DefaultIndex is the file DirHandler serves for directory requests.
const DefaultIndex = "index.html"

// DirHandler serves files from an fs.FS. A request for a directory serves
// its index file.
type DirHandler struct {
	FS    fs.FS
	Index string
}

// NewDirHandler serves fsys with DefaultIndex.
func NewDirHandler(fsys fs.FS) *DirHandler {
	return &DirHandler{FS: fsys, Index: DefaultIndex}
}

// Handle implements RequestHandler. The returned body is the open file.
func (d *DirHandler) Handle(p string) (*Response, bool) {
	name, ok := d.resolve(p)
	if !ok {
		return nil, false
	}
	f, err := d.FS.Open(name)
	if err != nil {
		return nil, false
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, false
	}
	return &Response{Body: f, MIMEType: mimeType(name)}, true
}

func (d *DirHandler) resolve(p string) (string, bool) {
	index := d.Index
	if index == "" {
		index = DefaultIndex
	}

	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		return index, true
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	if info, err := fs.Stat(d.FS, name); err == nil && info.IsDir() {
		return path.Join(name, index), true
	}
	return name, true
}

func mimeType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	switch ext {
	case ".js", ".mjs":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".svg":
		return "image/svg+xml"
	case ".ico":
		return "image/x-icon"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	default:
		return defaultMIMEType
	}
}
