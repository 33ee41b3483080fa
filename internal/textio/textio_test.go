package textio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagedupe/phashcluster/pkg/phash"
)

func TestWriteLineThenReadLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fp := phash.PHash{1, 2, 3}

	require.NoError(t, WriteLine(&buf, fp, "/photos/a.jpg"))
	require.NoError(t, WriteLine(&buf, phash.PHash{42}, "/photos/b.jpg"))

	lines, err := ReadLines(&buf)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.True(t, fp.Equal(lines[0].Fingerprint))
	assert.Equal(t, "/photos/a.jpg", lines[0].Path)
	assert.True(t, phash.PHash{42}.Equal(lines[1].Fingerprint))
	assert.Equal(t, "/photos/b.jpg", lines[1].Path)
}

func TestReadLinesSkipsBlankLines(t *testing.T) {
	r := strings.NewReader("1,2\t/a.jpg\n\n3,4\t/b.jpg\n")
	lines, err := ReadLines(r)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestReadLinesRejectsMissingTab(t *testing.T) {
	r := strings.NewReader("1,2,3 no-tab-here")
	_, err := ReadLines(r)
	require.Error(t, err)
}

func TestReadLinesRejectsMalformedFingerprint(t *testing.T) {
	r := strings.NewReader("not-a-number\t/a.jpg\n")
	_, err := ReadLines(r)
	require.Error(t, err)
}
