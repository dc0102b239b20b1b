package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/unicode/norm"
)

// importLessonZip expands an uploaded lesson ZIP into the lesson tree. Member
// names from Windows archives are frequently Shift_JIS; entries flagged
// non-UTF-8 are reinterpreted before sanitizing.
func (s *Server) importLessonZip(w http.ResponseWriter, r *http.Request, file io.Reader, filename string) {
	if !strings.HasSuffix(strings.ToLower(filename), ".zip") {
		s.flash(w, r, "ZIPファイルを選択してください。")
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.flash(w, r, "ZIPの展開に失敗しました: "+err.Error())
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.flash(w, r, "ZIPの展開に失敗しました: "+err.Error())
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}

	saved := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		inner := strings.ReplaceAll(zipEntryName(f), "\\", "/")
		var parts []string
		for _, seg := range strings.Split(inner, "/") {
			if seg == "" || seg == "." || seg == ".." {
				continue
			}
			parts = append(parts, sanitizePathComponent(seg))
		}
		if len(parts) == 0 {
			continue
		}
		rel := strings.Join(parts, "/")
		if !strings.HasSuffix(strings.ToLower(rel), ".xlsx") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			log.Printf("Failed to open zip member %s: %v", inner, err)
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Printf("Failed to read zip member %s: %v", inner, err)
			continue
		}
		if err := s.storage.Upload(lessonPrefix+"/"+rel, content, xlsxContentType); err != nil {
			log.Printf("Failed to store %s: %v", rel, err)
			continue
		}
		saved++
	}

	if saved > 0 {
		s.flash(w, r, fmt.Sprintf("レッスンZIPを展開しました（%d 件の .xlsx）", saved))
	} else {
		s.flash(w, r, "ZIP内に .xlsx が見つかりませんでした。")
	}
	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

// zipEntryName decodes a member name. Entries without the UTF-8 flag keep
// their original raw bytes in Name; try Shift_JIS before giving up.
func zipEntryName(f *zip.File) string {
	if !f.NonUTF8 {
		return f.Name
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().String(f.Name)
	if err != nil {
		return f.Name
	}
	return decoded
}

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]+`)
var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// sanitizePathComponent neutralizes one path segment of an archive member.
func sanitizePathComponent(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.Trim(name, " /\\")
	name = norm.NFKC.String(name)
	if name == "." || name == ".." {
		name = "_"
	}
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = controlChars.ReplaceAllString(name, "")
	if name == "" {
		return "_"
	}
	return name
}

// safeFilename strips any path and dangerous characters from an uploaded
// file name.
func safeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "\x00", "")
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.TrimSpace(name)
}
