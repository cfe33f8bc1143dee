// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package textdomain

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the logger used by package textdomain.
var Logger zerolog.Logger = log.With().Str("sys", "textdomain").Logger()
