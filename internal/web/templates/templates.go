// Package templates renders the HTML pages of the web UI.
//
// Pages are html/template files embedded in the binary and exposed as templ
// components, so handlers render them the same way as any other component.
package templates

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

// DisplayRows caps how many cleaned rows a page shows.
const DisplayRows = 500

var (
	indexPage  = parsePage("html/index.html")
	resultPage = parsePage("html/result.html")
	errorPage  = parsePage("html/error.html")
)

// parsePage parses the layout and partials, then the page, which overrides
// the layout's title and content blocks.
func parsePage(page string) *template.Template {
	return template.Must(template.New("layout").ParseFS(files, "html/layout.html", "html/partials.html", page))
}

func render(t *template.Template, data any) templ.Component {
	return templ.FromGoHTML(t.Lookup("layout"), data)
}

// ResultView is a stored result prepared for display.
type ResultView struct {
	ID           string
	FileName     string
	CreatedAt    time.Time
	Duration     time.Duration
	Stats        core.Stats
	InputHeader  []string
	InputPreview [][]string
	Columns      []string
	Rows         [][]string
	Truncated    bool
	DownloadCSV  string
	DownloadXLSX string
}

// NewResultView builds the view of res. At most DisplayRows rows are kept.
func NewResultView(res *core.Result) *ResultView {
	rows := res.Rows
	truncated := len(rows) > DisplayRows
	if truncated {
		rows = rows[:DisplayRows]
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Values()
	}

	base := "/results/" + res.ID
	return &ResultView{
		ID:           res.ID,
		FileName:     res.FileName,
		CreatedAt:    res.CreatedAt,
		Duration:     res.Duration,
		Stats:        res.Stats,
		InputHeader:  res.InputHeader,
		InputPreview: res.InputPreview,
		Columns:      core.OutputColumns,
		Rows:         cells,
		Truncated:    truncated,
		DownloadCSV:  base + "/download.csv",
		DownloadXLSX: base + "/download.xlsx",
	}
}

// IndexData is the data of the upload page.
type IndexData struct {
	MaxFileSizeMB int64
	Error         *core.UserMessage
	Result        *ResultView
}

// Index renders the upload page, optionally followed by the last result.
func Index(data IndexData) templ.Component {
	return render(indexPage, data)
}

// Result renders a result page.
func Result(view *ResultView) templ.Component {
	return render(resultPage, view)
}

type errorData struct {
	Status     int
	StatusText string
	Message    core.UserMessage
}

// ErrorPage renders a full error page.
func ErrorPage(status int, msg core.UserMessage) templ.Component {
	return render(errorPage, errorData{
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    msg,
	})
}
