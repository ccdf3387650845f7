package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misinfo-watch/cascadia/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEventsCSV(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "events.csv", `post_id,user_id,cascade_id,timestamp,bot_label,text
p1,u1,c1,2023-06-13T12:00:00Z,bot,hello
p2,u2,c1,2023-06-13T13:00:00Z,human,world
p3,u3,c2,garbage-timestamp,human,skipped
p4,u4,c2,2023-06-13T14:00:00Z,,unlabeled
`)

	table, err := LoadEventsCSV(path)
	require.NoError(t, err)

	require.Len(t, table.Events, 3) // bad-timestamp row skipped
	assert.Equal("p1", table.Events[0].PostID)
	assert.Equal(models.LabelBot, table.Events[0].BotLabel)
	assert.Equal(models.LabelUnknown, table.Events[2].BotLabel)
	assert.Equal(12, table.Events[0].Timestamp.UTC().Hour())

	assert.NoError(table.Require(models.ColCascadeID, models.ColBotLabel, models.ColTimestamp))
}

func TestLoadEventsCSVMissingColumns(t *testing.T) {
	path := writeFile(t, "events.csv", `post_id,user_id,timestamp
p1,u1,2023-06-13T12:00:00Z
`)

	table, err := LoadEventsCSV(path)
	require.NoError(t, err, "loading succeeds; the schema check is the analysis boundary")

	err = table.Require(models.ColCascadeID, models.ColBotLabel)
	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ElementsMatch(t, []string{models.ColCascadeID, models.ColBotLabel}, schemaErr.Missing)
}

func TestLoadEventsCSVLenientTimestamps(t *testing.T) {
	path := writeFile(t, "events.csv", `post_id,user_id,cascade_id,timestamp,bot_label
p1,u1,c1,2023-06-13 12:00:00,bot
p2,u2,c1,Jun 13 2023 13:00:00,human
`)

	table, err := LoadEventsCSV(path)
	require.NoError(t, err)
	assert.Len(t, table.Events, 2)
}

func TestLoadEventsJSONL(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "events.jsonl", `{"post_id":"p1","user_id":"u1","cascade_id":"c1","timestamp":"2023-06-13T12:00:00Z","bot_label":"bot"}
{"post_id":"p2","user_id":"u2","cascade_id":"c1","timestamp":"2023-06-13T12:30:00Z","bot_label":"human","text":"hi"}
`)

	table, err := LoadEventsJSONL(path)
	require.NoError(t, err)
	require.Len(t, table.Events, 2)
	assert.Equal(models.LabelHuman, table.Events[1].BotLabel)
	assert.Equal("hi", table.Events[1].Text)
	assert.NoError(table.Require(models.ColCascadeID, models.ColBotLabel, models.ColTimestamp))
	assert.True(table.HasColumn("text"))
}

func TestLoadEdgesCSV(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "edges.csv", `cascade_id,source_user,target_user
c1,alice,bob
c1,alice,carol
c2,x,y
`)

	graphs, err := LoadEdgesCSV(path)
	require.NoError(t, err)
	assert.Len(graphs["c1"], 2)
	assert.Len(graphs["c2"], 1)
	assert.Equal("alice", graphs["c1"][0].SourceUser)
}

func TestLoadEdgesCSVMissingColumns(t *testing.T) {
	path := writeFile(t, "edges.csv", `cascade_id,from,to
c1,alice,bob
`)

	_, err := LoadEdgesCSV(path)
	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ElementsMatch(t, []string{"source_user", "target_user"}, schemaErr.Missing)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadEventsCSV("/does/not/exist.csv")
	assert.Error(t, err)
	_, err = LoadEventsJSONL("/does/not/exist.jsonl")
	assert.Error(t, err)
	_, err = LoadEdgesCSV("/does/not/exist.csv")
	assert.Error(t, err)
}
