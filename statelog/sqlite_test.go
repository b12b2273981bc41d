package statelog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSink_RecordsCurrentSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "state.db")

	first := NewSQLiteSink(path, zerolog.Nop())
	require.NoError(t, first.Append(Entry{AgentID: 1, State: "S1"}))
	require.NoError(t, first.Close())

	s := NewSQLiteSink(path, zerolog.Nop())
	require.NoError(t, s.Open())
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(Entry{Time: ts, AgentID: 2, State: "S2"}))
	require.NoError(t, s.Append(Entry{AgentID: 2, State: "S3"}))
	require.NoError(t, s.Append(Entry{AgentID: -1, Message: "note"}))

	recs, err := s.Records()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "S2", recs[0].State)
	assert.Equal(t, "S3", recs[1].State)
	assert.True(t, recs[0].CreatedAt.Equal(ts))
	assert.Equal(t, 2, recs[1].AgentID)
	assert.NotEmpty(t, recs[0].SessionID)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Append(Entry{AgentID: 2, State: "S4"}), ErrClosed)
	assert.Equal(t, path, s.Path())
}

func TestSQLiteSink_RecordsBeforeOpen(t *testing.T) {
	s := NewSQLiteSink(filepath.Join(t.TempDir(), "state.db"), zerolog.Nop())
	recs, err := s.Records()
	require.NoError(t, err)
	assert.Empty(t, recs)
}
