// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"regexp"

	"nickandperla.net/epistle/internal/token"
)

// CatchAll is the reaction pattern that matches every subject.
const CatchAll = "*"

// Reaction is a subject pattern and the block it runs on a match.
type Reaction struct {
	Pattern string
	Body    []Instruction
	re      *regexp.Regexp
}

// NewReaction compiles pattern. Patterns are unanchored regular expressions;
// CatchAll is accepted as is.
func NewReaction(pattern string, body []Instruction) (Reaction, error) {
	r := Reaction{Pattern: pattern, Body: body}
	if pattern == CatchAll {
		return r, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Reaction{}, err
	}
	r.re = re
	return r, nil
}

// Match reports whether the reaction handles a mail with this subject.
func (r Reaction) Match(subject string) bool {
	if r.re == nil {
		return r.Pattern == CatchAll
	}
	return r.re.MatchString(subject)
}

func (r Reaction) String() string {
	return token.Quote(r.Pattern) + " " + BlockString(r.Body)
}
