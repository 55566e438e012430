package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"promptbook/internal/journal"
)

func TestLoad(t *testing.T) {
	prompts, err := Load("testdata/prompts.yaml")
	require.NoError(t, err)
	require.Len(t, prompts, 3)

	first := prompts[0]
	require.Equal(t, "week-01", first.PromptKey)
	require.Equal(t, "Where you were born", first.Title)
	require.True(t, first.Active)
	require.Equal(t, []string{"Where were you born?", "What were you told about the day?"}, []string(first.Questions))
	require.Equal(t, []string{"Who was there?"}, []string(first.HelpfulFollowups))

	require.Equal(t, "week-02-old", prompts[2].PromptKey)
	require.False(t, prompts[2].Active)
	require.Empty(t, prompts[1].HelpfulFollowups)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"week out of range": "prompts:\n  - week: 53\n    title: x\n",
		"week zero":         "prompts:\n  - week: 0\n",
		"two active":        "prompts:\n  - week: 4\n    key: a\n  - week: 4\n    key: b\n",
		"duplicate key":     "prompts:\n  - week: 4\n  - week: 4\n    active: false\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}

	_, err := Parse([]byte("prompts: [oops"))
	require.Error(t, err)
}

func TestMissing(t *testing.T) {
	prompts := []journal.Prompt{
		{PromptKey: "a", Week: 1, Active: true},
		{PromptKey: "b", Week: 2, Active: false},
	}
	missing := Missing(prompts)
	require.Len(t, missing, 51)
	require.Equal(t, 2, missing[0])
	require.Equal(t, 52, missing[50])
}

func TestShippedCatalogCoversEveryWeek(t *testing.T) {
	prompts, err := Load("../../prompts.yaml")
	require.NoError(t, err)
	require.Len(t, prompts, 52)
	require.Empty(t, Missing(prompts))
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=promptbook dbname=promptbook sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gdb
}

func TestUpsert_KeepsInactive(t *testing.T) {
	p := journal.Prompt{PromptKey: "week-03-old", Week: 3, Title: "Old", Active: false}
	stmt := upsert(dryRun(t), &p).Statement

	require.False(t, p.Active)
	require.Equal(t, false, stmt.Vars[len(stmt.Vars)-1])
	sql := stmt.SQL.String()
	require.Contains(t, sql, `"active"`)
	require.Contains(t, sql, `ON CONFLICT ("prompt_key") DO UPDATE SET`)
	require.Contains(t, sql, `"active"="excluded"."active"`)
}

func TestUpsert_Active(t *testing.T) {
	p := journal.Prompt{PromptKey: "week-03", Week: 3, Title: "New", Active: true}
	stmt := upsert(dryRun(t), &p).Statement

	require.Equal(t, true, stmt.Vars[len(stmt.Vars)-1])
}
