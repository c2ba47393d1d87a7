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

package utils

import (
	"golang.org/x/exp/constraints"
)

type num interface {
	constraints.Integer | constraints.Float
}

// SetDefaultNum sets *p to d if *p is zero.
func SetDefaultNum[T num](p *T, d T) {
	if *p == 0 {
		*p = d
	}
}

// SetDefaultString sets *p to s if *p is empty.
func SetDefaultString(p *string, s string) {
	if len(*p) == 0 {
		*p = s
	}
}
