// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package textdomain

import "errors"

var (
	// ErrInvalidArgument reports a malformed call shape, such as a numeric
	// divider passed to the pair form of a plural translation. It is raised
	// before any catalog lookup or cache write.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPluralFormOutOfRange reports a plural rule that evaluated to an
	// index beyond the catalog's translated forms.
	ErrPluralFormOutOfRange = errors.New("plural form index out of range")

	// ErrInvalidPluralRule reports a plural-rule expression that could not
	// be parsed or evaluated.
	ErrInvalidPluralRule = errors.New("invalid plural rule")
)
