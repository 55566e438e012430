// Package catalog loads the 52-week prompt catalog from YAML and seeds it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promptbook/internal/journal"
)

var ErrInvalidCatalog = errors.New("invalid prompt catalog")

type file struct {
	Prompts []item `yaml:"prompts"`
}

type item struct {
	Key              string   `yaml:"key"`
	Week             int      `yaml:"week"`
	Title            string   `yaml:"title"`
	Category         string   `yaml:"category"`
	Coaching         string   `yaml:"coaching"`
	Questions        []string `yaml:"questions"`
	HelpfulFollowups []string `yaml:"helpful_followups"`
	Active           *bool    `yaml:"active"`
}

// Load reads and validates a catalog file.
func Load(path string) ([]journal.Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog. Prompts default to active and get the key
// "week-NN" unless one is given.
func Parse(data []byte) ([]journal.Prompt, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	out := make([]journal.Prompt, 0, len(f.Prompts))
	for _, it := range f.Prompts {
		p := journal.Prompt{
			PromptKey:        strings.TrimSpace(it.Key),
			Week:             it.Week,
			Title:            strings.TrimSpace(it.Title),
			Category:         strings.TrimSpace(it.Category),
			Coaching:         strings.TrimSpace(it.Coaching),
			Questions:        nonBlank(it.Questions),
			HelpfulFollowups: nonBlank(it.HelpfulFollowups),
			Active:           it.Active == nil || *it.Active,
		}
		if p.PromptKey == "" {
			p.PromptKey = fmt.Sprintf("week-%02d", p.Week)
		}
		out = append(out, p)
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate enforces weeks in 1..52, unique keys and at most one active
// prompt per week.
func Validate(prompts []journal.Prompt) error {
	keys := map[string]bool{}
	active := map[int]string{}
	for _, p := range prompts {
		if !journal.ValidWeek(p.Week) {
			return fmt.Errorf("%w: %s: week %d out of range", ErrInvalidCatalog, p.PromptKey, p.Week)
		}
		if keys[p.PromptKey] {
			return fmt.Errorf("%w: duplicate key %s", ErrInvalidCatalog, p.PromptKey)
		}
		keys[p.PromptKey] = true
		if !p.Active {
			continue
		}
		if other, ok := active[p.Week]; ok {
			return fmt.Errorf("%w: week %d active twice (%s, %s)", ErrInvalidCatalog, p.Week, other, p.PromptKey)
		}
		active[p.Week] = p.PromptKey
	}
	return nil
}

// Missing lists the weeks with no active prompt.
func Missing(prompts []journal.Prompt) []int {
	have := map[int]bool{}
	for _, p := range prompts {
		if p.Active {
			have[p.Week] = true
		}
	}
	var out []int
	for w := 1; w <= journal.TotalWeeks; w++ {
		if !have[w] {
			out = append(out, w)
		}
	}
	return out
}

// Seed upserts prompts by key. Prompts turned inactive are written first so
// the per-week active index never sees two active rows.
func Seed(ctx context.Context, db *gorm.DB, prompts []journal.Prompt) error {
	if err := Validate(prompts); err != nil {
		return err
	}
	ordered := make([]journal.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if !p.Active {
			ordered = append(ordered, p)
		}
	}
	for _, p := range prompts {
		if p.Active {
			ordered = append(ordered, p)
		}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range ordered {
			if err := upsert(tx, &ordered[i]).Error; err != nil {
				return fmt.Errorf("seed %s: %w", ordered[i].PromptKey, err)
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, p *journal.Prompt) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prompt_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"week", "title", "category", "coaching", "questions", "helpful_followups", "active"}),
	}).Create(p)
}

func nonBlank(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
