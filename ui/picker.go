package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"
	"github.com/muesli/reflow/truncate"
)

// maxImageSize bounds what is uploaded for diagnosis.
const maxImageSize = 10 << 20

var imageExtensions = []string{
	"*.jpg", "*.jpeg", "*.png", "*.webp",
}

type (
	initImageSearchMsg struct {
		cwd string
		ch  chan gitcha.SearchResult
	}
	foundImageMsg       gitcha.SearchResult
	imageSearchFinished struct{}
)

// pickerModel lists crop photos found under the working directory.
type pickerModel struct {
	common    *commonModel
	cwd       string
	images    []gitcha.SearchResult
	cursor    int
	searching bool

	// Channel that receives paths to local images
	finder chan gitcha.SearchResult
}

func newPickerModel(common *commonModel) pickerModel {
	return pickerModel{common: common}
}

// start clears any previous results and begins a new search.
func (m *pickerModel) start() tea.Cmd {
	m.images = nil
	m.cursor = 0
	m.searching = true
	m.finder = nil
	return findImages(*m.common)
}

func (m pickerModel) selected() (gitcha.SearchResult, bool) {
	if len(m.images) == 0 {
		return gitcha.SearchResult{}, false
	}
	return m.images[m.cursor], true
}

func (m pickerModel) update(msg tea.Msg) (pickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case initImageSearchMsg:
		m.finder = msg.ch
		m.cwd = msg.cwd
		return m, findNextImage(m.finder)

	case foundImageMsg:
		m.images = append(m.images, gitcha.SearchResult(msg))
		return m, findNextImage(m.finder)

	case imageSearchFinished:
		m.searching = false

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.images)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m pickerModel) view() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Choose a crop photo"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Upload clear photos of affected crop parts for accurate diagnosis"))
	b.WriteString("\n\n")

	switch {
	case len(m.images) == 0 && m.searching:
		b.WriteString(subtleStyle.Render("Looking for photos…"))
		b.WriteString("\n")
	case len(m.images) == 0:
		b.WriteString(subtleStyle.Render("No photos found in " + m.cwd))
		b.WriteString("\n")
	}

	height := max(m.common.height-10, 3)
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	width := max(m.common.width-20, 20)
	for i := start; i < len(m.images) && i < start+height; i++ {
		res := m.images[i]
		name := truncate.StringWithTail(stripAbsolutePath(res.Path, m.cwd), uint(width), ellipsis) //nolint:gosec
		size := ""
		if res.Info != nil {
			size = humanize.Bytes(uint64(res.Info.Size())) //nolint:gosec
		}
		line := fmt.Sprintf("%s  %s", name, subtleStyle.Render(size))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ choose • enter diagnose • esc cancel"))
	return b.String()
}

// COMMANDS

func findImages(m commonModel) tea.Cmd {
	return func() tea.Msg {
		var (
			cwd = m.cfg.Path
			err error
		)

		if cwd == "" {
			cwd, err = os.Getwd()
		} else {
			cwd, err = filepath.Abs(cwd)
		}
		if err != nil {
			log.Error("error finding images", "error", err)
			return errMsg{err}
		}

		log.Debug("searching for images", "cwd", cwd)

		ch, err := gitcha.FindFilesExcept(cwd, imageExtensions, nil)
		if err != nil {
			log.Error("error finding images", "error", err)
			return errMsg{err}
		}
		return initImageSearchMsg{ch: ch, cwd: cwd}
	}
}

func findNextImage(ch chan gitcha.SearchResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if ok {
			return foundImageMsg(res)
		}
		log.Debug("image search finished")
		return imageSearchFinished{}
	}
}

// ReadImage loads a crop photo, refusing files above the upload limit.
func ReadImage(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to stat image: %w", err)
	}
	if info.Size() > maxImageSize {
		return nil, fmt.Errorf("%s is too large (%s, max %s)", filepath.Base(path),
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(maxImageSize)) //nolint:gosec
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read image: %w", err)
	}
	return b, nil
}

func stripAbsolutePath(fullPath, cwd string) string {
	fp, _ := filepath.EvalSymlinks(fullPath)
	cp, _ := filepath.EvalSymlinks(cwd)
	return strings.ReplaceAll(fp, cp+string(os.PathSeparator), "")
}
