package main

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"wordquiz"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
)

const (
	uploadPrefix    = "uploads"
	lessonPrefix    = "uploads/lessons"
	generatedPrefix = "generated"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Server struct {
	cfg       wordquiz.Config
	storage   wordquiz.Storage
	db        *wordquiz.DB
	store     *sessions.CookieStore
	templates map[string]*template.Template
	styles    wordquiz.StyleConfig
}

func main() {
	godotenv.Load()
	wordquiz.SetVerbose(true)

	cfg := wordquiz.LoadConfig()
	cfg.LogEnv()

	storage, err := wordquiz.NewLocalStorage(cfg.StorageRoot)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	db, err := wordquiz.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	store := sessions.NewCookieStore([]byte(cfg.SecretKey))

	templates := make(map[string]*template.Template)
	for _, name := range []string{"index", "upload", "make", "download"} {
		file := filepath.Join(cfg.TemplatesDir, name+".html")
		base := filepath.Join(cfg.TemplatesDir, "base.html")
		templates[name] = template.Must(template.New(name).ParseFiles(base, file))
	}

	server := &Server{
		cfg:       cfg,
		storage:   storage,
		db:        db,
		store:     store,
		templates: templates,
		styles:    wordquiz.DefaultStyles(wordquiz.ResolveFont(cfg.FontsDir)),
	}

	http.HandleFunc("/", server.handleIndex)
	http.HandleFunc("/upload", server.handleUpload)
	http.HandleFunc("/make", server.handleMake)
	http.HandleFunc("/download", server.handleDownload)
	http.HandleFunc("/download_file", server.handleDownloadFile)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

// flash stores a one-shot user message in the session.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, msg string) {
	session, _ := s.store.Get(r, "wordquiz-session")
	session.AddFlash(msg)
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
}

func (s *Server) takeFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := s.store.Get(r, "wordquiz-session")
	var msgs []string
	for _, f := range session.Flashes() {
		if m, ok := f.(string); ok {
			msgs = append(msgs, m)
		}
	}
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	return msgs
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Flashes"] = s.takeFlashes(w, r)
	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// listWorkbooks returns uploaded single workbooks (full storage keys),
// excluding the lesson tree.
func (s *Server) listWorkbooks() []string {
	keys, err := s.storage.List(uploadPrefix, ".xlsx")
	if err != nil {
		log.Printf("Failed to list workbooks: %v", err)
		return nil
	}
	var out []string
	for _, k := range keys {
		if !strings.HasPrefix(k, lessonPrefix+"/") {
			out = append(out, k)
		}
	}
	return out
}

// lessonTree groups lesson workbooks by folder, keyed by the path relative
// to the lesson root.
func (s *Server) lessonTree() map[string][]string {
	keys, err := s.storage.List(lessonPrefix, ".xlsx")
	if err != nil {
		log.Printf("Failed to list lessons: %v", err)
		return nil
	}
	tree := map[string][]string{}
	for _, k := range keys {
		rel := strings.TrimPrefix(k, lessonPrefix+"/")
		folder := path.Dir(rel)
		if folder == "." {
			folder = ""
		}
		tree[folder] = append(tree[folder], rel)
	}
	for _, files := range tree {
		sort.Strings(files)
	}
	return tree
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, "index", map[string]interface{}{
		"Files":      s.listWorkbooks(),
		"LessonTree": s.lessonTree(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, "upload", map[string]interface{}{
			"Files":      s.listWorkbooks(),
			"LessonTree": s.lessonTree(),
		})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentLength)
	if err := r.ParseMultipartForm(s.cfg.MaxContentLength); err != nil {
		s.flash(w, r, "アップロードに失敗しました: "+err.Error())
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	if file, header, err := r.FormFile("file"); err == nil && header.Filename != "" {
		defer file.Close()
		s.uploadWorkbook(w, r, file, header.Filename)
		return
	}

	if file, header, err := r.FormFile("lesson_zip"); err == nil && header.Filename != "" {
		defer file.Close()
		s.importLessonZip(w, r, file, header.Filename)
		return
	}

	s.flash(w, r, "ファイルが選択されていません。")
	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

func (s *Server) uploadWorkbook(w http.ResponseWriter, r *http.Request, file io.Reader, filename string) {
	name := safeFilename(filename)
	if !s.cfg.AllowedUploadExts[strings.ToLower(filepath.Ext(name))] {
		s.flash(w, r, ".xlsx のみアップロード可です。")
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.flash(w, r, "アップロードに失敗しました: "+err.Error())
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}
	key := uploadPrefix + "/" + name
	if err := s.storage.Upload(key, data, xlsxContentType); err != nil {
		s.flash(w, r, "アップロードに失敗しました: "+err.Error())
	} else {
		s.flash(w, r, "アップロードが完了しました: "+name)
	}
	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

func (s *Server) handleMake(w http.ResponseWriter, r *http.Request) {
	files := s.listWorkbooks()
	tree := s.lessonTree()

	if r.Method == http.MethodGet {
		s.render(w, r, "make", map[string]interface{}{
			"Files":      files,
			"LessonTree": tree,
			"MaxSets":    s.cfg.MaxSetsPerRequest,
		})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	numQuestions, err := strconv.Atoi(r.FormValue("num_questions"))
	if err != nil {
		s.flash(w, r, "出題数は整数で指定してください。")
		http.Redirect(w, r, "/make", http.StatusSeeOther)
		return
	}
	numSets := 1
	if v := r.FormValue("num_sets"); v != "" {
		if numSets, err = strconv.Atoi(v); err != nil {
			s.flash(w, r, "部数は整数で指定してください。")
			http.Redirect(w, r, "/make", http.StatusSeeOther)
			return
		}
	}
	mode, err := wordquiz.ParseMode(r.FormValue("mode"))
	if err != nil {
		s.flash(w, r, "不正な出題モードです。")
		http.Redirect(w, r, "/make", http.StatusSeeOther)
		return
	}

	var (
		pool     *wordquiz.Table
		criteria wordquiz.SelectionCriteria
		baseName string
	)
	if r.FormValue("select_mode") == "lessons" {
		pool, criteria, baseName, err = s.buildLessonPool(r, tree)
	} else {
		pool, criteria, baseName, err = s.buildSinglePool(r, files)
	}
	if err != nil {
		s.flash(w, r, err.Error())
		http.Redirect(w, r, "/make", http.StatusSeeOther)
		return
	}

	generator := wordquiz.NewSetGenerator(s.styles, nil)
	batch, err := generator.GenerateBatch(pool, wordquiz.GenerationRequest{
		BaseName:     baseName,
		Criteria:     criteria,
		Mode:         mode,
		NumQuestions: numQuestions,
		NumSets:      numSets,
		MaxSets:      s.cfg.MaxSetsPerRequest,
	})
	if err != nil {
		s.flash(w, r, "PDFの作成に失敗しました: "+err.Error())
		http.Redirect(w, r, "/make", http.StatusSeeOther)
		return
	}

	for _, pair := range batch.Pairs {
		for _, doc := range []wordquiz.RenderedDocument{pair.Question, pair.Answer} {
			if err := s.storage.Upload(generatedPrefix+"/"+doc.Key, doc.Data, "application/pdf"); err != nil {
				s.flash(w, r, "PDFの保存に失敗しました: "+err.Error())
				http.Redirect(w, r, "/make", http.StatusSeeOther)
				return
			}
		}
	}
	if err := s.db.RecordBatch(batch, baseName, criteria.Describe()); err != nil {
		log.Printf("Failed to record batch %s: %v", batch.ID, err)
	}

	query := "batch=" + batch.ID
	stamp := time.Now().Format("20060102-150405")

	if r.FormValue("merge") != "" {
		data, err := wordquiz.MergeBatch(batch)
		if err != nil {
			s.flash(w, r, "PDFの結合に失敗しました: "+err.Error())
		} else {
			key := fmt.Sprintf("%s/merged_%s_%s.pdf", generatedPrefix, mode.Label, stamp)
			if err := s.storage.Upload(key, data, "application/pdf"); err == nil {
				query += "&m=" + key
			}
		}
	}
	if r.FormValue("bundle") != "" {
		data, err := wordquiz.BundleBatch(batch)
		if err != nil {
			s.flash(w, r, "ZIPの作成に失敗しました: "+err.Error())
		} else {
			key := fmt.Sprintf("%s/bundle_%s_%s.zip", generatedPrefix, mode.Label, stamp)
			if err := s.storage.Upload(key, data, "application/zip"); err == nil {
				query += "&z=" + key
			}
		}
	}

	s.flash(w, r, "問題と解答PDFを作成しました！")
	http.Redirect(w, r, "/download?"+query, http.StatusSeeOther)
}

// buildSinglePool loads one workbook for a number-range selection.
func (s *Server) buildSinglePool(r *http.Request, files []string) (*wordquiz.Table, wordquiz.SelectionCriteria, string, error) {
	filename := r.FormValue("filename")
	valid := false
	for _, f := range files {
		if f == filename {
			valid = true
			break
		}
	}
	if !valid {
		return nil, nil, "", errors.New("不正なファイル名です。")
	}

	start, err1 := strconv.Atoi(r.FormValue("start_num"))
	end, err2 := strconv.Atoi(r.FormValue("end_num"))
	if err1 != nil || err2 != nil {
		return nil, nil, "", errors.New("開始番号・終了番号は整数で指定してください。")
	}

	data, err := s.storage.Open(filename)
	if err != nil {
		return nil, nil, "", fmt.Errorf("Excelの読み込みに失敗しました: %w", err)
	}
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	table, err := wordquiz.LoadTable(data, base)
	if err != nil {
		return nil, nil, "", err
	}
	return wordquiz.PoolTables(table), wordquiz.RangeCriteria{Start: start, End: end}, base, nil
}

// buildLessonPool pools the picked lesson workbooks for a section selection.
func (s *Server) buildLessonPool(r *http.Request, tree map[string][]string) (*wordquiz.Table, wordquiz.SelectionCriteria, string, error) {
	folder := r.FormValue("lesson_folder")
	validRel := map[string]bool{}
	for _, rel := range tree[folder] {
		validRel[rel] = true
	}
	var picked []string
	for _, rel := range r.Form["lesson_files"] {
		if validRel[rel] {
			picked = append(picked, rel)
		}
	}
	if len(picked) == 0 {
		return nil, nil, "", errors.New("選択されたファイルがありません（フォルダとファイルを選んでください）。")
	}

	var names []string
	for _, raw := range strings.Split(r.FormValue("sections"), ",") {
		if v := strings.TrimSpace(raw); v != "" {
			names = append(names, v)
		}
	}

	var tables []*wordquiz.Table
	var labels []string
	for _, rel := range picked {
		data, err := s.storage.Open(lessonPrefix + "/" + rel)
		if err != nil {
			return nil, nil, "", fmt.Errorf("Excelの読み込みに失敗しました: %w", err)
		}
		table, err := wordquiz.LoadTable(data, rel)
		if err != nil {
			return nil, nil, "", err
		}
		tables = append(tables, table)
		labels = append(labels, path.Base(rel))
	}

	displayFolder := folder
	if displayFolder == "" {
		displayFolder = "（直下）"
	}
	base := displayFolder + ": " + strings.Join(labels, ", ")
	return wordquiz.PoolTables(tables...), wordquiz.SectionCriteria{Sections: names}, base, nil
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	batchID := r.URL.Query().Get("batch")
	data := map[string]interface{}{
		"Merged": r.URL.Query().Get("m"),
		"Zip":    r.URL.Query().Get("z"),
	}
	if batchID != "" {
		docs, err := s.db.GetBatchDocuments(batchID)
		if err != nil {
			log.Printf("Failed to load batch %s: %v", batchID, err)
		} else {
			keys := make([]string, 0, len(docs))
			for _, d := range docs {
				keys = append(keys, generatedPrefix+"/"+d.Key)
			}
			data["Documents"] = keys
		}
	}
	s.render(w, r, "download", data)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if !strings.HasPrefix(key, generatedPrefix+"/") && !strings.HasPrefix(key, uploadPrefix+"/") {
		http.NotFound(w, r)
		return
	}
	ext := strings.ToLower(path.Ext(key))
	if !s.cfg.AllowedDownloadExts[ext] {
		s.flash(w, r, "許可されていないファイル形式です。")
		http.Redirect(w, r, "/download", http.StatusSeeOther)
		return
	}
	data, err := s.storage.Open(key)
	if err != nil {
		s.flash(w, r, "指定されたファイルが存在しません。")
		http.Redirect(w, r, "/download", http.StatusSeeOther)
		return
	}
	switch ext {
	case ".pdf":
		w.Header().Set("Content-Type", "application/pdf")
	case ".zip":
		w.Header().Set("Content-Type", "application/zip")
	default:
		w.Header().Set("Content-Type", xlsxContentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.Write(data)
}
