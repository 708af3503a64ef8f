package fileserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	goimage "image"
	"image/png"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Carbon-X-DAO/AvatarMix/catalog"
	"github.com/Carbon-X-DAO/AvatarMix/fsutil"
	"github.com/Carbon-X-DAO/AvatarMix/image"
	"github.com/Carbon-X-DAO/AvatarMix/templates"
	"github.com/ajg/form"
)

const renderTimeout = 15 * time.Second

type pickForm struct {
	Slice string `form:"slice"`
	Index int    `form:"index"`
}

type stateResponse struct {
	Selection map[string]int `json:"selection"`
	Code      string         `json:"code"`
	Version   uint64         `json:"version"`
	Surface   string         `json:"surface"`
	Changed   bool           `json:"changed"`
}

// activeTab reads the visible picker from ?tab=, defaulting to the first slice.
func activeTab(r *http.Request) catalog.Slice {
	s, err := catalog.ParseSlice(r.URL.Query().Get("tab"))
	if err != nil {
		return catalog.Head
	}
	return s
}

func tabRedirect(w http.ResponseWriter, r *http.Request, s catalog.Slice) {
	http.Redirect(w, r, "/?tab="+s.String(), http.StatusSeeOther)
}

func (server *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	active := activeTab(r)
	snap := server.editor.Current()
	cats := server.editor.Catalogs()

	page := templates.EditorPage{
		Active:  active.String(),
		Code:    snap.Code(),
		Size:    server.editor.Size(),
		Version: snap.Version,
		Changed: server.editor.Changed(),
	}
	for _, s := range catalog.Slices() {
		page.Tabs = append(page.Tabs, templates.Tab{Name: s.String(), Active: s == active})
	}
	for i, e := range cats.Entries(active) {
		page.Items = append(page.Items, templates.Item{
			Index:    i,
			Empty:    e.IsEmpty(),
			Selected: snap.Index(active) == i,
			Thumb:    fmt.Sprintf("/thumbs/%s/%d.png", active, i),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	writeTemplate(templates.Editor, page, w)
}

func (server *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var pick pickForm
	dec := form.NewDecoder(r.Body)
	dec.IgnoreUnknownKeys(true)
	if err := dec.Decode(&pick); err != nil {
		log.Printf("failed to decode pick form: %s", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s, err := catalog.ParseSlice(pick.Slice)
	if err != nil {
		log.Printf("failed to decode pick form: %s", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	server.editor.Select(s, pick.Index)
	tabRedirect(w, r, s)
}

func (server *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	server.editor.RandomizeAll()
	tabRedirect(w, r, activeTab(r))
}

func (server *Server) handleComposite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	img, err := server.editor.Composite(ctx)
	if err != nil {
		writeErr(fmt.Errorf("failed to read composite: %w", err), w)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writePNG(img, w)
}

func (server *Server) handleThumb(w http.ResponseWriter, r *http.Request) {
	m := reThumb.FindStringSubmatch(r.URL.Path)
	s, err := catalog.ParseSlice(m[reThumb.SubexpIndex("slice")])
	if err != nil {
		server.serveNotFound(w)
		return
	}
	index, err := strconv.Atoi(m[reThumb.SubexpIndex("index")])
	if err != nil {
		server.serveNotFound(w)
		return
	}

	entry, ok := server.editor.Catalogs().Entry(s, index)
	if !ok {
		server.serveNotFound(w)
		return
	}

	size := server.editor.Size()
	thumb := goimage.NewRGBA(goimage.Rect(0, 0, size, size))
	if res, present := entry.Resource(); present {
		image.Fill(thumb, res.Image)
	}

	w.Header().Add("Cache-Control", "max-age=86400,s-maxage=86400")
	writePNG(thumb, w)
}

func (server *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	data, err := server.editor.Export(ctx)
	if err != nil {
		writeErr(err, w)
		return
	}

	filename := fmt.Sprintf("avatar-%d.png", server.now().Unix())
	go server.saveExport(filename, server.editor.OutfitCode(), len(data))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		log.Printf("failed to write export %s: %s", filename, err)
	}
}

func (server *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := server.editor.Current()
	resp := stateResponse{
		Selection: make(map[string]int, catalog.NumSlices),
		Code:      snap.Code(),
		Version:   snap.Version,
		Surface:   server.editor.SurfaceState().String(),
		Changed:   server.editor.Changed(),
	}
	for _, s := range catalog.Slices() {
		resp.Selection[s.String()] = snap.Index(s)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode state: %s", err)
	}
}

func (server *Server) handleAssetsPath(w http.ResponseWriter, r *http.Request) {
	rel := filepath.FromSlash(strings.TrimPrefix(r.URL.Path, "/assets"))
	path := filepath.Join(server.assetRoot, filepath.Clean(string(filepath.Separator)+rel))

	exists, err := fsutil.Exists(path)
	if err != nil {
		writeErr(err, w)
		return
	}
	if !exists {
		server.serveNotFound(w)
		return
	}

	isDir, err := fsutil.IsDir(path)
	if err != nil {
		writeErr(err, w)
		return
	}
	if isDir {
		server.serveNotFound(w)
		return
	}

	w.Header().Add("Cache-Control", "max-age=86400,s-maxage=86400")
	server.serveFile(path, w)
}

func writePNG(img goimage.Image, w http.ResponseWriter) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeErr(fmt.Errorf("failed to encode PNG: %w", err), w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("failed to write PNG: %s", err)
	}
}
