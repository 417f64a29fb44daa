package script

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
)

// LookupEncoding resolves an encoding name such as "shift_jis" or "euc-jp".
// UTF-8 (and the empty name) resolve to nil, meaning no conversion.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "sjis", "shift_jis", "shift-jis", "cp932":
		return japanese.ShiftJIS, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding: %s", name)
	}
	return enc, nil
}
