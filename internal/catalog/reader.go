package catalog

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// textReader decodes catalogue input as UTF-8. A leading byte order mark
// is dropped and invalid byte sequences become U+FFFD, so spreadsheet
// exports with stray Latin-1 bytes still load.
func textReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
