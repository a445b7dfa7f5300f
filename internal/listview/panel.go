// Package listview renders the store list panel to HTML fragments.
package listview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"storelocator/internal/locator"
	"storelocator/internal/stores"
)

//go:embed templates/*.html
var templateFS embed.FS

var listTemplate = template.Must(template.New("list.html").ParseFS(templateFS, "templates/list.html"))

// Status is the rendering state of the panel.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

type entryData struct {
	locator.ListEntry
	PhoneHref template.URL
}

type listData struct {
	Status  Status
	Error   string
	Fatal   string
	Entries []entryData
}

// View is a point-in-time copy of the panel.
type View struct {
	Status        Status              `json:"status"`
	Error         string              `json:"error,omitempty"`
	Fatal         string              `json:"fatal,omitempty"`
	Entries       []locator.ListEntry `json:"entries"`
	Highlighted   string              `json:"highlighted,omitempty"`
	ScrollTarget  string              `json:"scrollTarget,omitempty"`
	Footer        string              `json:"footer"`
	SearchEnabled bool                `json:"searchEnabled"`
	HTML          string              `json:"html"`
}

// Panel is the list panel. It implements locator.ListView.
type Panel struct {
	mu            sync.Mutex
	status        Status
	errReason     string
	fatal         string
	entries       []locator.ListEntry
	scrollTarget  string
	footer        string
	searchEnabled bool
	onSelect      func(id string)
}

var _ locator.ListView = (*Panel)(nil)

// New returns an empty panel in the loading state.
func New() *Panel {
	return &Panel{status: StatusLoading}
}

// OnSelect registers the handler for clicks on a list item.
func (p *Panel) OnSelect(fn func(id string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSelect = fn
}

// Click handles a click on the item with the given id. Clicks on links
// inside the item navigate instead of selecting.
func (p *Panel) Click(id string, onLink bool) {
	if onLink {
		return
	}
	p.mu.Lock()
	fn := p.onSelect
	p.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

func (p *Panel) ShowLoading() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusLoading
	p.errReason = ""
}

func (p *Panel) ShowError(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusError
	p.errReason = reason
	p.entries = nil
}

func (p *Panel) Render(entries []locator.ListEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusReady
	p.errReason = ""
	p.entries = append([]locator.ListEntry(nil), entries...)
}

// SetHighlighted toggles the selected class of one item without a re-render.
func (p *Panel) SetHighlighted(id string, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].ID == id {
			p.entries[i].Selected = on
		}
	}
}

// ScrollIntoView records the item the list should scroll to, if present.
func (p *Panel) ScrollIntoView(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.ID == id {
			p.scrollTarget = id
			return
		}
	}
}

func (p *Panel) SetFooter(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.footer = text
}

func (p *Panel) SetSearchEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searchEnabled = enabled
}

// ShowFatal replaces the whole widget with message.
func (p *Panel) ShowFatal(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fatal = message
	p.entries = nil
}

// HTML renders the current list fragment.
func (p *Panel) HTML() (string, error) {
	p.mu.Lock()
	data := p.data()
	p.mu.Unlock()
	return render(data)
}

// Snapshot returns the panel state together with its rendered HTML.
func (p *Panel) Snapshot() (View, error) {
	p.mu.Lock()
	v := View{
		Status:        p.status,
		Error:         p.errReason,
		Fatal:         p.fatal,
		Entries:       append([]locator.ListEntry{}, p.entries...),
		ScrollTarget:  p.scrollTarget,
		Footer:        p.footer,
		SearchEnabled: p.searchEnabled,
	}
	for _, e := range p.entries {
		if e.Selected {
			v.Highlighted = e.ID
		}
	}
	data := p.data()
	p.mu.Unlock()

	html, err := render(data)
	if err != nil {
		return View{}, err
	}
	v.HTML = html
	return v, nil
}

func (p *Panel) data() listData {
	d := listData{Status: p.status, Error: p.errReason, Fatal: p.fatal}
	for _, e := range p.entries {
		if e.Name == "" {
			e.Name = stores.NamePlaceholder
		}
		if e.Hours == "" {
			e.Hours = stores.HoursNotAvailable
		}
		d.Entries = append(d.Entries, entryData{ListEntry: e, PhoneHref: telURL(e.PhoneHref)})
	}
	return d
}

// telURL marks a tel: href safe when it holds only dial characters;
// html/template rewrites unknown schemes otherwise.
func telURL(href string) template.URL {
	number, ok := strings.CutPrefix(href, "tel:")
	if !ok || number == "" {
		return ""
	}
	for i, r := range number {
		if r == '+' && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			return ""
		}
	}
	return template.URL(href)
}

func render(data listData) (string, error) {
	var buf bytes.Buffer
	if err := listTemplate.ExecuteTemplate(&buf, "list", data); err != nil {
		return "", fmt.Errorf("execute list template: %w", err)
	}
	return buf.String(), nil
}
