package cookiejar

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_ParsesTabSeparatedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		"example.com\tFALSE\t/\tFALSE\t0\tsession\tabc123\n" +
		"\n" +
		".example.com\tTRUE\t/\tTRUE\t0\ttoken\txyz789\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	jar, err := LoadFile(path)
	require.NoError(t, err)

	u, _ := url.Parse("https://example.com/")
	cookies := jar.Cookies(u)
	require.Len(t, cookies, 2)

	names := map[string]string{}
	for _, c := range cookies {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "abc123", names["session"])
	assert.Equal(t, "xyz789", names["token"])
}

func TestLoadFile_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cookies.txt")
	content := "example.com\tFALSE\t/\tFALSE\t0\tonly-six-fields\n" +
		"example.com\tFALSE\t/\tFALSE\t0\tgood\tvalue\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	jar, err := LoadFile(path)
	require.NoError(t, err)

	u, _ := url.Parse("https://example.com/")
	cookies := jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "good", cookies[0].Name)
}

func TestLoadFile_MissingFileReturnsError(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/cookies.txt")
	assert.Error(t, err)
}
