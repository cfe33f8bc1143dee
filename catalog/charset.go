// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// encodeCharset converts the UTF-8 string s into the named charset.
// Unknown charsets and conversion failures return s unchanged.
func encodeCharset(charset, s string) string {
	if charset == "" || s == "" {
		return s
	}

	switch strings.ToLower(charset) {
	case "utf-8", "utf8":
		return s
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		Logger.Warn().Str("charset", charset).Msg("Unknown output charset")

		return s
	}

	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).String(s)
	if err != nil {
		Logger.Warn().Err(err).Str("charset", charset).Msg("Charset conversion failed")

		return s
	}

	return out
}
