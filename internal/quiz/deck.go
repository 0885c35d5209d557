package quiz

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed decks/*.yaml
var builtinDecks embed.FS

const DefaultDeckName = "bi-match"

var (
	ErrUnknownLabel    = errors.New("unknown profile label")
	ErrDuplicateLabel  = errors.New("duplicate profile label")
	ErrDuplicatePrompt = errors.New("duplicate prompt id")
	ErrNoLabels        = errors.New("deck declares no profile labels")
	ErrUnknownDeck     = errors.New("unknown builtin deck")
)

// Label identifies one profile bucket. The closed set of labels is declared
// by the deck, not by the type.
type Label string

type Profile struct {
	ID          Label  `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Tip         string `yaml:"tip" json:"tip"`
}

type Prompt struct {
	ID      int     `yaml:"id" json:"id"`
	Text    string  `yaml:"text" json:"text"`
	Like    Label   `yaml:"like" json:"like"`
	Dislike []Label `yaml:"dislike" json:"dislike"`
}

// Deck is an immutable, validated prompt list plus its declared labels.
// Build one with ParseDeck, LoadDeck or BuiltinDeck.
type Deck struct {
	Name     string
	Title    string
	profiles []Profile
	prompts  []Prompt
	index    map[Label]int
}

type deckFile struct {
	Name    string    `yaml:"name"`
	Title   string    `yaml:"title"`
	Labels  []Profile `yaml:"labels"`
	Prompts []Prompt  `yaml:"prompts"`
}

func NewDeck(name string, profiles []Profile, prompts []Prompt) (*Deck, error) {
	deck := &Deck{
		Name:     strings.TrimSpace(name),
		profiles: append([]Profile(nil), profiles...),
		prompts:  make([]Prompt, 0, len(prompts)),
		index:    make(map[Label]int, len(profiles)),
	}

	if len(deck.profiles) == 0 {
		return nil, ErrNoLabels
	}
	for idx, profile := range deck.profiles {
		if strings.TrimSpace(string(profile.ID)) == "" {
			return nil, fmt.Errorf("label at position %d: %w", idx, ErrUnknownLabel)
		}
		if _, exists := deck.index[profile.ID]; exists {
			return nil, fmt.Errorf("%q: %w", profile.ID, ErrDuplicateLabel)
		}
		if deck.profiles[idx].Title == "" {
			deck.profiles[idx].Title = string(profile.ID)
		}
		deck.index[profile.ID] = idx
	}

	seen := make(map[int]struct{}, len(prompts))
	for _, prompt := range prompts {
		if _, exists := seen[prompt.ID]; exists {
			return nil, fmt.Errorf("prompt %d: %w", prompt.ID, ErrDuplicatePrompt)
		}
		seen[prompt.ID] = struct{}{}

		if !deck.HasLabel(prompt.Like) {
			return nil, fmt.Errorf("prompt %d like %q: %w", prompt.ID, prompt.Like, ErrUnknownLabel)
		}
		for _, label := range prompt.Dislike {
			if !deck.HasLabel(label) {
				return nil, fmt.Errorf("prompt %d dislike %q: %w", prompt.ID, label, ErrUnknownLabel)
			}
		}

		prompt.Dislike = dedupeLabels(prompt.Dislike)
		deck.prompts = append(deck.prompts, prompt)
	}

	return deck, nil
}

func ParseDeck(data []byte) (*Deck, error) {
	var file deckFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse deck: %w", err)
	}

	deck, err := NewDeck(file.Name, file.Labels, file.Prompts)
	if err != nil {
		return nil, fmt.Errorf("invalid deck %q: %w", file.Name, err)
	}
	deck.Title = file.Title
	return deck, nil
}

// LoadDeck reads a deck from path, or returns the builtin default deck when
// path is empty.
func LoadDeck(path string) (*Deck, error) {
	if strings.TrimSpace(path) == "" {
		return BuiltinDeck(DefaultDeckName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}
	return ParseDeck(data)
}

func BuiltinDeck(name string) (*Deck, error) {
	data, err := builtinDecks.ReadFile("decks/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownDeck)
	}
	return ParseDeck(data)
}

// Labels returns the label set in declaration order.
func (d *Deck) Labels() []Label {
	labels := make([]Label, len(d.profiles))
	for idx, profile := range d.profiles {
		labels[idx] = profile.ID
	}
	return labels
}

func (d *Deck) Profiles() []Profile {
	return append([]Profile(nil), d.profiles...)
}

func (d *Deck) Profile(label Label) (Profile, bool) {
	idx, ok := d.index[label]
	if !ok {
		return Profile{}, false
	}
	return d.profiles[idx], true
}

func (d *Deck) HasLabel(label Label) bool {
	_, ok := d.index[label]
	return ok
}

func (d *Deck) Prompts() []Prompt {
	prompts := make([]Prompt, len(d.prompts))
	for idx, prompt := range d.prompts {
		prompts[idx] = prompt.clone()
	}
	return prompts
}

func (d *Deck) Len() int {
	return len(d.prompts)
}

// PromptAt returns the prompt at traversal position idx.
func (d *Deck) PromptAt(idx int) (Prompt, bool) {
	if idx < 0 || idx >= len(d.prompts) {
		return Prompt{}, false
	}
	return d.prompts[idx].clone(), true
}

// clone copies the dislike set so callers cannot edit a shared deck.
func (p Prompt) clone() Prompt {
	p.Dislike = append([]Label(nil), p.Dislike...)
	return p
}

func dedupeLabels(labels []Label) []Label {
	if len(labels) < 2 {
		return append([]Label(nil), labels...)
	}
	seen := make(map[Label]struct{}, len(labels))
	out := make([]Label, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
