package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/river-mounts/roam-code-sf/internal/model"
)

func TestAllFilesRoundTripsHashAndMTime(t *testing.T) {
	st := openTestStore(t)
	mtime := time.Unix(1700000000, 0)
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		_, err := UpsertFile(tx, model.File{Path: "a.go", Language: "go", Hash: 123456789, MTime: mtime, LineCount: 42})
		return err
	}))

	files, err := st.AllFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].Path)
	assert.Equal(t, uint64(123456789), files[0].Hash)
	assert.Equal(t, 42, files[0].LineCount)
	assert.True(t, files[0].MTime.Equal(mtime.UTC()))
}

func TestAllSymbolsReturnsEverySymbol(t *testing.T) {
	st := openTestStore(t)
	var fileID int64
	require.NoError(t, st.WithTx(func(tx *sql.Tx) error {
		var err error
		fileID, err = UpsertFile(tx, model.File{Path: "a.go", Hash: 1})
		if err != nil {
			return err
		}
		if _, err = InsertSymbol(tx, model.Symbol{FileID: fileID, Name: "A"}); err != nil {
			return err
		}
		_, err = InsertSymbol(tx, model.Symbol{FileID: fileID, Name: "B"})
		return err
	}))

	syms, err := st.AllSymbols()
	require.NoError(t, err)
	assert.Len(t, syms, 2)
}

func TestAllFilesEmptyStore(t *testing.T) {
	st := openTestStore(t)
	files, err := st.AllFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}
