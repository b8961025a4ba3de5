package content

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

// CategoryAll matches every tip.
const CategoryAll = "all"

// Category is a tip filter.
type Category struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Tip is a short farming article.
type Tip struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	ReadTime    string `yaml:"read_time"`
	Thumbnail   string `yaml:"thumbnail"`
	Content     string `yaml:"content"` // markdown
}

// Markdown returns the full article with its title.
func (t Tip) Markdown() string {
	return fmt.Sprintf("# %s %s\n\n_%s · %s_\n\n%s", t.Thumbnail, t.Title, t.Description, t.ReadTime, t.Content)
}

type catalogue struct {
	Categories []Category `yaml:"categories"`
	Tips       []Tip      `yaml:"tips"`
}

//go:embed tips.yaml
var tipsYAML []byte

var loadCatalogue = sync.OnceValues(func() (catalogue, error) {
	var c catalogue
	if err := yaml.Unmarshal(tipsYAML, &c); err != nil {
		return catalogue{}, fmt.Errorf("parse tips: %w", err)
	}
	return c, nil
})

// Tips returns every tip. The catalogue is embedded, so an error means the
// binary was built from a broken file.
func Tips() ([]Tip, error) {
	c, err := loadCatalogue()
	if err != nil {
		return nil, err
	}
	out := make([]Tip, len(c.Tips))
	copy(out, c.Tips)
	return out, nil
}

// Categories returns the tip filters, "all" first.
func Categories() ([]Category, error) {
	c, err := loadCatalogue()
	if err != nil {
		return nil, err
	}
	out := make([]Category, len(c.Categories))
	copy(out, c.Categories)
	return out, nil
}

// FilterTips keeps the tips in category. CategoryAll and "" keep all.
func FilterTips(tips []Tip, category string) []Tip {
	if category == "" || category == CategoryAll {
		return tips
	}
	var out []Tip
	for _, t := range tips {
		if strings.EqualFold(t.Category, category) {
			out = append(out, t)
		}
	}
	return out
}

// tipSource lets fuzzy match over titles and descriptions.
type tipSource []Tip

func (s tipSource) String(i int) string { return s[i].Title + " " + s[i].Description }
func (s tipSource) Len() int            { return len(s) }

// SearchTips ranks tips by fuzzy match of query against their title and
// description. An empty query returns tips unchanged.
func SearchTips(tips []Tip, query string) []Tip {
	query = strings.TrimSpace(query)
	if query == "" {
		return tips
	}
	matches := fuzzy.FindFrom(query, tipSource(tips))
	out := make([]Tip, 0, len(matches))
	for _, m := range matches {
		out = append(out, tips[m.Index])
	}
	return out
}
