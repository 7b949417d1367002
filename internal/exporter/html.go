package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/smartmark/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/smartmark-export-YYYY-MM-DD.html
func DefaultExportPath(now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("smartmark-export-%s.html", now.Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders bookmarks as Netscape bookmark HTML, in the given
// order, so browsers can import them.
func ExportHTML(bookmarks []model.Bookmark) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, bm := range bookmarks {
		fmt.Fprintf(&b,
			"    <DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			html.EscapeString(bm.URL),
			bm.CreatedAt.Unix(),
			html.EscapeString(bm.Title),
		)
	}

	b.WriteString("</DL><p>\n")
	return b.String()
}
