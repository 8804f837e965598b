package tracker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/study-ui/internal/model"
)

func TestEncodeCSVQuotes(t *testing.T) {
	var out strings.Builder
	err := EncodeCSV(&out, []model.StudyRow{{
		ID:      "a1",
		Title:   `say "hi", twice`,
		Reviews: []string{"1일", "3일"},
		Link:    "#",
	}})
	require.NoError(t, err)
	assert.Equal(t,
		"id,title,date,revisit,topic,level,reviews,link\n"+
			`a1,"say ""hi"", twice",,,,,1일 3일,#`+"\n",
		out.String())
}

func TestDecodeCSV(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		rows, err := DecodeCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
	t.Run("header only with bom and crlf", func(t *testing.T) {
		rows, err := DecodeCSV(strings.NewReader("\ufeffid,title\r\n"))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
	t.Run("columns by name", func(t *testing.T) {
		rows, err := DecodeCSV(strings.NewReader("link,title,id,extra\nhttp://x,T,7,zzz\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, model.StudyRow{ID: "7", Title: "T", Link: "http://x", Reviews: []string{}}, rows[0])
	})
	t.Run("multiline quoted field", func(t *testing.T) {
		rows, err := DecodeCSV(strings.NewReader("id,revisit\n1,\"line one\nline two\"\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "line one\nline two", rows[0].Revisit)
	})
}

func TestParseReviews(t *testing.T) {
	assert.Equal(t, []string{"1일", "3일", "1주일"}, ParseReviews(" 1일|3일,\t1주일 "))
	assert.Equal(t, []string{}, ParseReviews(""))
}

func TestDecodeCSVRejectsBareQuote(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("id,title\nx,a\"b\n"))
	assert.ErrorIs(t, err, ErrBadCSV)
}
