// Package nbayes implements an in-process multinomial naive Bayes sentiment
// classifier. The model is trained elsewhere and shipped as a YAML file of
// per-class document and token counts.
package nbayes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/linnemanlabs/tanggap/internal/complaint"
	"github.com/linnemanlabs/tanggap/internal/textnorm"
)

// DefaultAlpha is the Laplace smoothing constant.
const DefaultAlpha = 1.0

// File is the on-disk model layout.
type File struct {
	Alpha   float64     `yaml:"alpha"`
	Classes []ClassFile `yaml:"classes"`
}

// ClassFile holds the training counts for one label.
type ClassFile struct {
	Label     string         `yaml:"label"`
	Documents int            `yaml:"documents"`
	Tokens    map[string]int `yaml:"tokens"`
}

type class struct {
	label    string
	logPrior float64
	logProb  map[string]float64
	logUnk   float64 // in-vocabulary token never seen with this class
}

// Model is an immutable trained classifier. A nil *Model classifies
// everything as unknown. Safe for concurrent use.
type Model struct {
	classes []class
	vocab   map[string]struct{}
}

// Load reads and compiles a model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator config
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return New(&f)
}

// New compiles a model from counts. A nil File yields a nil Model.
func New(f *File) (*Model, error) {
	if f == nil {
		return nil, nil
	}
	if len(f.Classes) < 2 {
		return nil, errors.New("model needs at least two classes")
	}
	alpha := f.Alpha
	if alpha <= 0 {
		alpha = DefaultAlpha
	}

	m := &Model{vocab: make(map[string]struct{})}
	totalDocs := 0
	seen := make(map[string]bool, len(f.Classes))
	for _, c := range f.Classes {
		if c.Label == "" {
			return nil, errors.New("class label is required")
		}
		if seen[c.Label] {
			return nil, fmt.Errorf("duplicate class %q", c.Label)
		}
		seen[c.Label] = true
		if c.Documents <= 0 {
			return nil, fmt.Errorf("class %q: documents must be positive", c.Label)
		}
		totalDocs += c.Documents
		for tok, n := range c.Tokens {
			if n < 0 {
				return nil, fmt.Errorf("class %q: negative count for %q", c.Label, tok)
			}
			m.vocab[tok] = struct{}{}
		}
	}

	v := float64(len(m.vocab))
	for _, c := range f.Classes {
		total := 0
		for _, n := range c.Tokens {
			total += n
		}
		denom := float64(total) + alpha*v
		cl := class{
			label:    c.Label,
			logPrior: math.Log(float64(c.Documents) / float64(totalDocs)),
			logProb:  make(map[string]float64, len(c.Tokens)),
			logUnk:   math.Log(alpha / denom),
		}
		for tok, n := range c.Tokens {
			cl.logProb[tok] = math.Log((float64(n) + alpha) / denom)
		}
		m.classes = append(m.classes, cl)
	}
	sort.Slice(m.classes, func(i, j int) bool { return m.classes[i].label < m.classes[j].label })
	return m, nil
}

// Labels returns the class labels in sorted order.
func (m *Model) Labels() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.classes))
	for i, c := range m.classes {
		out[i] = c.label
	}
	return out
}

// Classify implements complaint.Classifier. Tokens outside the training
// vocabulary are ignored; text with no known tokens falls back to the priors.
func (m *Model) Classify(_ context.Context, normalized string) complaint.Sentiment {
	if m == nil || len(m.classes) == 0 {
		return complaint.Unknown()
	}

	scores := make([]float64, len(m.classes))
	for i, c := range m.classes {
		scores[i] = c.logPrior
	}
	for _, tok := range textnorm.Tokens(normalized) {
		if _, ok := m.vocab[tok]; !ok {
			continue
		}
		for i, c := range m.classes {
			if lp, ok := c.logProb[tok]; ok {
				scores[i] += lp
			} else {
				scores[i] += c.logUnk
			}
		}
	}

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}

	// softmax relative to the winner keeps exp() in range
	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - scores[best])
	}
	return complaint.Sentiment{
		Label:      m.classes[best].label,
		Confidence: 100 / sum,
	}
}
