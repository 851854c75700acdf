package contextmatch

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/avishaychauhan/EchoLabs/internal/model"
)

//go:embed corpus.yaml
var defaultCorpus []byte

type Email struct {
	ID          string   `yaml:"id"`
	From        string   `yaml:"from"`
	Subject     string   `yaml:"subject"`
	Preview     string   `yaml:"preview"`
	Date        string   `yaml:"date"`
	AvatarColor string   `yaml:"avatarColor"`
	Keywords    []string `yaml:"keywords"`
}

type Document struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Preview  string   `yaml:"preview"`
	Modified string   `yaml:"modified"`
	FileType string   `yaml:"fileType"`
	Keywords []string `yaml:"keywords"`
}

type Meeting struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Date      string   `yaml:"date"`
	Time      string   `yaml:"time"`
	Attendees []string `yaml:"attendees"`
	Keywords  []string `yaml:"keywords"`
}

type Message struct {
	ID       string   `yaml:"id"`
	Channel  string   `yaml:"channel"`
	From     string   `yaml:"from"`
	Message  string   `yaml:"message"`
	Time     string   `yaml:"time"`
	Keywords []string `yaml:"keywords"`
}

// Corpus is the workspace material excerpts are matched against.
type Corpus struct {
	Emails    []Email    `yaml:"emails"`
	Documents []Document `yaml:"documents"`
	Calendar  []Meeting  `yaml:"calendar"`
	Slack     []Message  `yaml:"slack"`
}

// ParseCorpus decodes a YAML corpus.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse context corpus: %w", err)
	}
	return &c, nil
}

// DefaultCorpus decodes the demo corpus compiled into the binary.
func DefaultCorpus() (*Corpus, error) {
	return ParseCorpus(defaultCorpus)
}

// entry is one searchable corpus item with its match already shaped for output.
type entry struct {
	keywords []string
	text     string
	match    model.ContextMatch
}

func (c *Corpus) entries() []entry {
	var out []entry

	for _, e := range c.Emails {
		out = append(out, entry{
			keywords: e.Keywords,
			text:     joinText(e.ID, e.From, e.Subject, e.Preview, e.Date, e.AvatarColor),
			match: model.ContextMatch{
				ID:          e.ID,
				MatchType:   model.MatchEmail,
				Title:       e.Subject,
				Preview:     e.Preview,
				From:        e.From,
				Date:        e.Date,
				AvatarColor: e.AvatarColor,
			},
		})
	}

	for _, d := range c.Documents {
		out = append(out, entry{
			keywords: d.Keywords,
			text:     joinText(d.ID, d.Title, d.Preview, d.Modified, d.FileType),
			match: model.ContextMatch{
				ID:        d.ID,
				MatchType: model.MatchDoc,
				Title:     d.Title,
				Preview:   d.Preview,
				Date:      d.Modified,
				FileType:  d.FileType,
			},
		})
	}

	for _, m := range c.Calendar {
		out = append(out, entry{
			keywords: m.Keywords,
			text:     joinText(m.ID, m.Title, m.Date, m.Time),
			match: model.ContextMatch{
				ID:        m.ID,
				MatchType: model.MatchCalendar,
				Title:     m.Title,
				Preview:   m.Time + " — " + strings.Join(m.Attendees, ", "),
				Date:      m.Date,
			},
		})
	}

	for _, s := range c.Slack {
		out = append(out, entry{
			keywords: s.Keywords,
			text:     joinText(s.ID, s.Channel, s.From, s.Message, s.Time),
			match: model.ContextMatch{
				ID:        s.ID,
				MatchType: model.MatchSlack,
				Title:     s.Channel + " — " + s.From,
				Preview:   s.Message,
				Channel:   s.Channel,
				From:      s.From,
				Date:      s.Time,
			},
		})
	}

	return out
}

func joinText(fields ...string) string {
	return strings.ToLower(strings.Join(fields, " "))
}
