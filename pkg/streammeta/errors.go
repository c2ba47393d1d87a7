/*
 * Copyright (C) 2024, Vizaxe
 *
 * This file is part of streammeta.
 *
 * streammeta is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * streammeta is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package streammeta

import (
	"fmt"
	"strings"
)

// UnknownBackendError reports a requested stream whose backend name has no
// entry in the registry. The whole call fails; no partial results.
type UnknownBackendError struct {
	Backend string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q", e.Backend)
}

// IncompleteResultError reports requested streams that no backend resolved.
// The whole call fails; no partial results.
type IncompleteResultError struct {
	Missing []StreamIdentity
}

func (e *IncompleteResultError) Error() string {
	sb := new(strings.Builder)
	sb.WriteString("no metadata for streams: ")
	for i, id := range e.Missing {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(id.String())
	}
	return sb.String()
}
