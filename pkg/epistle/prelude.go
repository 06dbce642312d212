// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package epistle provides the epistle runtime.
package epistle

// DefaultPrelude is run after the native std.com users are installed,
// unless WithNoStdlib is given.
const DefaultPrelude = `
# echo sends every mail back to its sender unchanged.
!<echo@std.com> {
	"*" { (@subject, @content) + @attachments > @sender; };
};

# null accepts any mail and does nothing with it.
!<null@std.com> {
	"*" {};
};
`
